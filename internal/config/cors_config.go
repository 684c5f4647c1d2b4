package config

import "strings"

type Cors struct {
	ClientURLs []string `env:"CLIENT_URL,required,notEmpty" envSeparator:","`
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	origins := make(AllowedOrigins, len(c.ClientURLs))
	for _, o := range c.ClientURLs {
		if o = normaliseOrigin(o); o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}

// Browsers send the Origin header without a trailing slash.
func normaliseOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
