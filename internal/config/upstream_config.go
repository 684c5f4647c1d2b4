package config

type UpstreamConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetTokenURL() string
	GetIssuer() string
	GetAPIURL() string
	GetNamespace() string
	GetLocale() string
	GetRedisURL() string
}

// Upstream holds the service credentials and endpoints of the game data provider.
type Upstream struct {
	ClientID     string `env:"CLIENT_ID,required,notEmpty"`
	ClientSecret string `env:"CLIENT_SECRET,required,notEmpty"`
	TokenURL     string `env:"UPSTREAM_TOKEN_URL" envDefault:"https://oauth.battle.net/token"`
	Issuer       string `env:"UPSTREAM_ISSUER"` // when set the token endpoint is discovered
	APIURL       string `env:"UPSTREAM_API_URL" envDefault:"https://us.api.blizzard.com"`
	Namespace    string `env:"UPSTREAM_NAMESPACE" envDefault:"profile-us"`
	Locale       string `env:"UPSTREAM_LOCALE" envDefault:"en_US"`
	RedisURL     string `env:"REDIS_URL"` // enables the shared upstream token cache
}

var _ UpstreamConfig = Upstream{}

func (u Upstream) GetClientID() string {
	return u.ClientID
}

func (u Upstream) GetClientSecret() string {
	return u.ClientSecret
}

func (u Upstream) GetTokenURL() string {
	return u.TokenURL
}

func (u Upstream) GetIssuer() string {
	return u.Issuer
}

func (u Upstream) GetAPIURL() string {
	return u.APIURL
}

func (u Upstream) GetNamespace() string {
	return u.Namespace
}

func (u Upstream) GetLocale() string {
	return u.Locale
}

func (u Upstream) GetRedisURL() string {
	return u.RedisURL
}
