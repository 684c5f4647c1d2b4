package oauthmodel

import "time"

// UpstreamToken is the access token issued to this service by the upstream identity provider.
// It is obtained through a client-credentials grant and only ever lives inside a signed session.
type UpstreamToken struct {
	// AccessToken is the bearer credential for the upstream profile API.
	// Example: "USVb1nGO9kwQlhNRRnI4iWVy2UV5j7M6h7"
	// Security: Never log or expose this value outside the session artifact
	AccessToken string `json:"access_token"`

	// ExpiresInSeconds is the lifetime the upstream reported when the token was issued.
	// Example: 86399
	// Note: Zero means the upstream did not say; the session falls back to its own max age
	ExpiresInSeconds int64 `json:"expires_in"`
}

// Lifetime returns the token lifetime as a duration, zero when unknown.
func (t UpstreamToken) Lifetime() time.Duration {
	if t.ExpiresInSeconds <= 0 {
		return 0
	}
	return time.Duration(t.ExpiresInSeconds) * time.Second
}

// String keeps access tokens out of log lines and error messages.
func (t UpstreamToken) String() string {
	if t.AccessToken == "" {
		return "UpstreamToken{<empty>}"
	}
	return "UpstreamToken{[REDACTED]}"
}
