package config

import "time"

type SecurityConfig interface {
	GetSigningSecrets() string
	GetMaxSessionAge() time.Duration
	GetCookieDomain() string
	GetLogoutRedirectURL() string
}

type Security struct {
	// SigningSecrets is either a single secret or "kid:secret" pairs separated by commas.
	// The first entry signs new sessions.
	SigningSecrets    string        `env:"SESSION_SIGNING_SECRET,required,notEmpty"`
	SessionMaxAge     time.Duration `env:"SESSION_MAX_AGE" envDefault:"1h"`
	CookieDomain      string        `env:"COOKIE_DOMAIN"`
	LogoutRedirectURL string        `env:"LOGOUT_REDIRECT_URL"`
}

func (s Security) GetSigningSecrets() string {
	return s.SigningSecrets
}

func (s Security) GetMaxSessionAge() time.Duration {
	return s.SessionMaxAge
}

func (s Security) GetCookieDomain() string {
	return s.CookieDomain
}
