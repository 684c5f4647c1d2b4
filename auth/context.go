package auth

import (
	"context"

	"github.com/jrsteele09/achievement-feed/oauthmodel"
)

type contextKey struct{}

// WithAuthenticatedContext stores the caller's authenticated context on ctx.
func WithAuthenticatedContext(ctx context.Context, authCtx oauthmodel.AuthenticatedContext) context.Context {
	return context.WithValue(ctx, contextKey{}, authCtx)
}

// FromContext returns the authenticated context stored by WithAuthenticatedContext.
func FromContext(ctx context.Context) (oauthmodel.AuthenticatedContext, bool) {
	authCtx, ok := ctx.Value(contextKey{}).(oauthmodel.AuthenticatedContext)
	return authCtx, ok
}
