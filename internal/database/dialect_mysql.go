package database

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN forces parseTime so DATETIME columns scan into time.Time, multiStatements so
// goose can apply migration files, and clientFoundRows so an UPDATE that leaves a row
// unchanged still reports it as affected
func (d *MySQLDialect) DSN(config DialectConfig) string {
	cfg, err := mysql.ParseDSN(config.URL)
	if err != nil {
		return config.URL
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return rewritePlaceholders(d.DriverName(), query)
}

func (d *MySQLDialect) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Question
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Ensure foreign key checks are enabled
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) GooseDialect() goose.Dialect {
	return goose.DialectMySQL
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) UpsertCompletionQuery() string {
	return insertCompletionColumns +
		" ON DUPLICATE KEY UPDATE value = VALUES(value), comment = VALUES(comment), created_at = VALUES(created_at)"
}

func (d *MySQLDialect) UpsertDayNoteQuery() string {
	return insertDayNoteColumns +
		" ON DUPLICATE KEY UPDATE content = VALUES(content), updated_at = VALUES(updated_at)"
}
