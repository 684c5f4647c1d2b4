package auth

import (
	"fmt"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/jrsteele09/achievement-feed/oauthmodel"
	"github.com/jrsteele09/achievement-feed/token"
	"github.com/pkg/errors"
)

// SessionDecoder turns a session artifact back into the session it carries.
type SessionDecoder interface {
	Decode(artifact string) (token.Session, error)
}

// Gate admits requests presenting a valid session artifact.
type Gate struct {
	decoder SessionDecoder
}

func NewGate(decoder SessionDecoder) (*Gate, error) {
	if decoder == nil {
		return nil, errors.Wrap(apperrors.ErrConfiguration, "[NewGate] session decoder is required")
	}
	return &Gate{decoder: decoder}, nil
}

// Authenticate derives the authenticated context from a presented artifact. Every failure
// matches ErrUnauthenticated; decode failures also match the decoder's error.
func (g *Gate) Authenticate(presented string) (oauthmodel.AuthenticatedContext, error) {
	if presented == "" {
		return oauthmodel.AuthenticatedContext{}, errors.Wrap(apperrors.ErrUnauthenticated, "[Gate.Authenticate] no session presented")
	}

	session, err := g.decoder.Decode(presented)
	if err != nil {
		return oauthmodel.AuthenticatedContext{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}

	return oauthmodel.AuthenticatedContext{
		AccessToken: session.Token.AccessToken,
		UserID:      session.UserID,
	}, nil
}
