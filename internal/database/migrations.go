package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies every pending migration for the connection's dialect
func (db *DB) RunMigrations(ctx context.Context) error {
	provider, err := db.migrationProvider()
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		zap.L().Info("Migration completed",
			zap.String("source", r.Source.Path),
			zap.Duration("duration", r.Duration))
	}

	return nil
}

// MigrationVersion returns the latest applied migration version
func (db *DB) MigrationVersion(ctx context.Context) (int64, error) {
	provider, err := db.migrationProvider()
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func (db *DB) migrationProvider() (*goose.Provider, error) {
	dir, err := fs.Sub(migrationsFS, "migrations/"+db.Dialect.MigrationsSubdir())
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(db.Dialect.GooseDialect(), db.DB.DB, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}
