package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	apperrors "github.com/jrsteele09/achievement-feed/internal/errors"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	UpstreamConfig
	SecurityConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetFeedLimit() int
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Upstream
	Security
	Storage
}

var _ Config = mainConfig{}

// New loads a .env file when one exists and then reads the process environment.
// Any missing or invalid setting is reported as ErrConfiguration.
func New() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("%w: load .env file: %w", apperrors.ErrConfiguration, err)
		}
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg mainConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConfiguration, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConfiguration, err)
	}
	return cfg, nil
}

func (c mainConfig) validate() error {
	if len(c.GetAllowedOrigins()) == 0 {
		return errors.New("CLIENT_URL must name at least one origin")
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if c.FeedLimit <= 0 {
		return errors.New("FEED_LIMIT must be positive")
	}
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Driver)
	}
	return nil
}

// GetLogoutRedirectURL falls back to the first allowed client origin.
func (c mainConfig) GetLogoutRedirectURL() string {
	if c.LogoutRedirectURL != "" {
		return c.LogoutRedirectURL
	}
	for _, origin := range c.ClientURLs {
		if origin = normaliseOrigin(origin); origin != "" {
			return origin
		}
	}
	return "/"
}
