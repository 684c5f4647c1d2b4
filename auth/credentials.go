package auth

import (
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/pkg/errors"
)

// Credentials is an identifier/secret pair presented by a user. It is never persisted or logged.
type Credentials struct {
	Identifier string
	Secret     string
}

// Validate requires both fields to be present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Identifier) == "" {
		return errors.Wrap(apperrors.ErrInvalidRequest, "identifier is required")
	}
	if c.Secret == "" {
		return errors.Wrap(apperrors.ErrInvalidRequest, "secret is required")
	}
	return nil
}

// String keeps the secret out of logs.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Identifier: %q, Secret: [REDACTED]}", c.Identifier)
}

// GoString keeps the secret out of %#v output.
func (c Credentials) GoString() string {
	return c.String()
}
