package errors

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Components return the most specific kind they can
// determine and the transport maps kinds to responses.
var (
	// Startup / configuration
	ErrConfiguration = errors.New("configuration error")

	// Caller input
	ErrInvalidRequest = errors.New("invalid request")

	// Authentication errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrInvalidSession       = errors.New("invalid session")

	// Upstream errors
	ErrTransientUpstream = errors.New("upstream unavailable")
	ErrUpstreamRejected  = errors.New("upstream rejected request")

	// Storage errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// UpstreamRejectedError is returned when an upstream answered with an error status.
type UpstreamRejectedError struct {
	Upstream   string // "token" or "profile"
	StatusCode int
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("%s upstream rejected request with status %d", e.Upstream, e.StatusCode)
}

func (e *UpstreamRejectedError) Is(target error) bool {
	return target == ErrUpstreamRejected
}

// TransientUpstreamError is returned when an upstream could not be reached at all.
type TransientUpstreamError struct {
	Upstream string
	Err      error
}

func (e *TransientUpstreamError) Error() string {
	return fmt.Sprintf("%s upstream unavailable: %v", e.Upstream, e.Err)
}

func (e *TransientUpstreamError) Is(target error) bool {
	return target == ErrTransientUpstream
}

func (e *TransientUpstreamError) Unwrap() error {
	return e.Err
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
