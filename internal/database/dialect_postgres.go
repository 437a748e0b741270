package database

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// PostgresDialect implements Dialect for PostgreSQL. The same dialect serves both the
// lib/pq driver ("postgres") and the pgx stdlib driver ("pgx"), which is the better fit for
// hosted serverless Postgres.
type PostgresDialect struct {
	driver string
}

// NewPostgresDialect creates a new PostgreSQL dialect backed by lib/pq
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{driver: "postgres"}
}

// NewPgxDialect creates a new PostgreSQL dialect backed by jackc/pgx
func NewPgxDialect() *PostgresDialect {
	return &PostgresDialect{driver: "pgx"}
}

func (d *PostgresDialect) DriverName() string {
	return d.driver
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholders(d.driver, query)
}

func (d *PostgresDialect) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Dollar
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// PostgreSQL has foreign keys enabled by default, no pragma needed
	return nil
}

func (d *PostgresDialect) GooseDialect() goose.Dialect {
	return goose.DialectPostgres
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) UpsertCompletionQuery() string {
	return insertCompletionColumns + onConflictCompletion
}

func (d *PostgresDialect) UpsertDayNoteQuery() string {
	return insertDayNoteColumns + onConflictDayNote
}
