package auth

import (
	"context"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/internal/metrics"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/jrsteele09/achievement-feed/token"
	"github.com/jrsteele09/achievement-feed/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	FlowLogin  = "login"
	FlowSignup = "signup"
)

// IdentityProvider verifies or registers credentials. A nil identity with a nil error means
// the credentials did not resolve to an account.
type IdentityProvider interface {
	SignIn(ctx context.Context, identifier, secret string) (*users.LocalIdentity, error)
	SignUp(ctx context.Context, identifier, secret string) (*users.LocalIdentity, error)
}

// TokenExchanger obtains the upstream access token embedded in new sessions.
type TokenExchanger interface {
	Exchange(ctx context.Context) (oauthmodel.UpstreamToken, error)
}

// SessionEncoder signs sessions into artifacts.
type SessionEncoder interface {
	Encode(session token.Session) (string, error)
}

// SessionService runs the login and signup flows. It writes nothing itself, so a failure at
// any step leaves nothing to undo.
type SessionService struct {
	identities IdentityProvider
	exchanger  TokenExchanger
	encoder    SessionEncoder
}

func NewSessionService(identities IdentityProvider, exchanger TokenExchanger, encoder SessionEncoder) (*SessionService, error) {
	if identities == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewSessionService] identity provider is required")
	}
	if exchanger == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewSessionService] token exchanger is required")
	}
	if encoder == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewSessionService] session encoder is required")
	}

	return &SessionService{
		identities: identities,
		exchanger:  exchanger,
		encoder:    encoder,
	}, nil
}

// Login verifies existing credentials and returns a new session artifact.
func (s *SessionService) Login(ctx context.Context, creds Credentials) (string, error) {
	return s.establish(ctx, FlowLogin, creds, s.identities.SignIn)
}

// Signup registers new credentials and returns a new session artifact.
func (s *SessionService) Signup(ctx context.Context, creds Credentials) (string, error) {
	return s.establish(ctx, FlowSignup, creds, s.identities.SignUp)
}

type resolveIdentity func(ctx context.Context, identifier, secret string) (*users.LocalIdentity, error)

func (s *SessionService) establish(ctx context.Context, flow string, creds Credentials, resolve resolveIdentity) (string, error) {
	artifact, err := s.run(ctx, creds, resolve)
	metrics.SessionAttempt(flow, outcomeFor(err))
	if err != nil {
		log.Debug().Err(err).Str("flow", flow).Msg("session not established")
		return "", err
	}
	return artifact, nil
}

func (s *SessionService) run(ctx context.Context, creds Credentials, resolve resolveIdentity) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}

	identity, err := resolve(ctx, creds.Identifier, creds.Secret)
	if err != nil {
		return "", err
	}
	if identity == nil {
		return "", apperrors.ErrAuthenticationFailed
	}

	upstreamToken, err := s.exchanger.Exchange(ctx)
	if err != nil {
		return "", err
	}

	artifact, err := s.encoder.Encode(token.Session{UserID: identity.ID, Token: upstreamToken})
	if err != nil {
		return "", errors.Wrap(err, "[SessionService] failed to encode session")
	}
	return artifact, nil
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperrors.ErrInvalidRequest), errors.Is(err, apperrors.ErrAuthenticationFailed):
		return metrics.OutcomeRejected
	case errors.Is(err, apperrors.ErrTransientUpstream):
		return metrics.OutcomeTransient
	default:
		return metrics.OutcomeFailed
	}
}
