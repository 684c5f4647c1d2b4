package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// migrate applies all pending migrations for the active dialect using goose.
func (db *DB) migrate(ctx context.Context) error {
	dialect := goosedb.DialectSQLite3
	dir := "migrations/sqlite"
	if db.driver == DriverPostgres {
		dialect = goosedb.DialectPostgres
		dir = "migrations/postgres"
	}

	migrationFS, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("failed to create sub filesystem: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, migrationFS)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
