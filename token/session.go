package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/pkg/errors"
)

// DefaultMaxAge bounds a session when no other limit is configured.
const DefaultMaxAge = time.Hour

// Session is the content carried by a session artifact.
type Session struct {
	UserID string
	Token  oauthmodel.UpstreamToken
}

type sessionClaims struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	jwt.RegisteredClaims
}

// SessionCodec turns sessions into signed, expiring artifacts and back. It keeps no server side state.
type SessionCodec struct {
	keyring *Keyring
	maxAge  time.Duration
	nowFunc func() time.Time
}

type SessionCodecOption func(*SessionCodec)

// WithMaxAge caps the lifetime of every artifact regardless of the upstream token lifetime.
func WithMaxAge(maxAge time.Duration) SessionCodecOption {
	return func(c *SessionCodec) {
		c.maxAge = maxAge
	}
}

func WithNowFunc(now func() time.Time) SessionCodecOption {
	return func(c *SessionCodec) {
		c.nowFunc = now
	}
}

func NewSessionCodec(keyring *Keyring, opts ...SessionCodecOption) (*SessionCodec, error) {
	if keyring == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewSessionCodec] keyring is required")
	}

	c := &SessionCodec{
		keyring: keyring,
		maxAge:  DefaultMaxAge,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.maxAge <= 0 {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewSessionCodec] max age must be positive")
	}
	return c, nil
}

// MaxAge is the upper bound on artifact lifetime, also used for the cookie Max-Age.
func (c *SessionCodec) MaxAge() time.Duration {
	return c.maxAge
}

// Encode signs the session with the current key. The artifact expires after the shorter of the
// max age and the upstream token lifetime.
func (c *SessionCodec) Encode(s Session) (string, error) {
	if s.Token.AccessToken == "" {
		return "", errors.Wrap(apperrors.ErrInvalidSession, "[SessionCodec.Encode] access token is required")
	}

	lifetime := c.maxAge
	if tokenLifetime := s.Token.Lifetime(); tokenLifetime > 0 && tokenLifetime < lifetime {
		lifetime = tokenLifetime
	}

	now := c.nowFunc()
	claims := sessionClaims{
		AccessToken: s.Token.AccessToken,
		ExpiresIn:   s.Token.ExpiresInSeconds,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.NewString(),
		},
	}

	artifact, err := c.keyring.Current().Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[SessionCodec.Encode]")
	}
	return artifact, nil
}

// Decode verifies an artifact and returns the session it carries. Any failure, including an
// expired or unknown key artifact, is reported as ErrInvalidSession.
func (c *SessionCodec) Decode(artifact string) (Session, error) {
	if artifact == "" {
		return Session{}, errors.Wrap(apperrors.ErrInvalidSession, "[SessionCodec.Decode] session is absent")
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(artifact, claims, c.keyring.VerificationKey,
		jwt.WithValidMethods([]string{c.keyring.Current().GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.nowFunc),
	)
	if err != nil || !parsed.Valid {
		return Session{}, apperrors.Wrapf(apperrors.ErrInvalidSession, "[SessionCodec.Decode] %v", err)
	}

	if claims.AccessToken == "" {
		return Session{}, errors.Wrap(apperrors.ErrInvalidSession, "[SessionCodec.Decode] access token missing")
	}

	return Session{
		UserID: claims.Subject,
		Token: oauthmodel.UpstreamToken{
			AccessToken:      claims.AccessToken,
			ExpiresInSeconds: claims.ExpiresIn,
		},
	}, nil
}
