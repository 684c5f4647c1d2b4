package oauthmodel

// AuthenticatedContext is derived from a validated session on every request.
// It is scoped to that request and never persisted.
type AuthenticatedContext struct {
	// AccessToken is the upstream bearer token embedded in the session.
	AccessToken string

	// UserID is the local identity the session was issued to.
	// Used for: attributing follow relations to a user
	UserID string
}
