package config

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type StorageConfig interface {
	GetDatabaseDriver() string
	GetDatabaseURL() string
}

type Storage struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"file:achievement-feed.db?_pragma=foreign_keys(1)"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetDatabaseDriver() string {
	return s.Driver
}

func (s Storage) GetDatabaseURL() string {
	return s.URL
}
