package config

import "strings"

type EnvVars struct {
	Port      string `env:"PORT,required,notEmpty"`
	AppName   string `env:"APP_NAME" envDefault:"Achievement Feed"`
	Env       string `env:"ENV" envDefault:"DEV"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	FeedLimit int    `env:"FEED_LIMIT" envDefault:"50"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return ":" + e.Port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// GetFeedLimit is the maximum number of achievements returned by the feed.
func (e EnvVars) GetFeedLimit() int {
	return e.FeedLimit
}
