package database

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts ? placeholders to the driver's bind syntax
	RewriteQuery(query string) string

	// Placeholder returns the squirrel placeholder format for built queries
	Placeholder() squirrel.PlaceholderFormat

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// GooseDialect returns the dialect name understood by goose
	GooseDialect() goose.Dialect

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// UpsertCompletionQuery inserts a binary completion or overwrites the existing
	// one for the same (activity_id, diary_id, date, binary_slot) key
	UpsertCompletionQuery() string

	// UpsertDayNoteQuery inserts a day note or overwrites the one for (diary_id, date)
	UpsertDayNoteQuery() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// rewritePlaceholders converts ? placeholders to the bind type sqlx associates with driverName.
// Queries that already use numbered placeholders pass through unchanged.
func rewritePlaceholders(driverName, query string) string {
	return sqlx.Rebind(sqlx.BindType(driverName), query)
}

const insertCompletionColumns = `INSERT INTO completions (id, activity_id, diary_id, date, value, comment, binary_slot, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`

const insertDayNoteColumns = `INSERT INTO day_notes (id, diary_id, date, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

// onConflictCompletion is shared by SQLite and PostgreSQL, which both accept ON CONFLICT ... DO UPDATE
const onConflictCompletion = `
		ON CONFLICT (activity_id, diary_id, date, binary_slot)
		DO UPDATE SET value = excluded.value, comment = excluded.comment, created_at = excluded.created_at`

const onConflictDayNote = `
		ON CONFLICT (diary_id, date)
		DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`
