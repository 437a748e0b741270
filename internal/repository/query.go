package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
)

// getOne runs a built query and scans a single row into dest.
// found is false when no row matched.
func getOne(ctx context.Context, db database.DBTX, dest interface{}, q squirrel.Sqlizer) (found bool, err error) {
	query, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	err = db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func selectAll(ctx context.Context, db database.DBTX, dest interface{}, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return db.SelectContext(ctx, dest, query, args...)
}

func execBuilt(ctx context.Context, db database.DBTX, q squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return db.ExecContext(ctx, query, args...)
}

// execOne runs an update or delete and reports whether any row was affected
func execOne(ctx context.Context, db database.DBTX, q squirrel.Sqlizer) (bool, error) {
	res, err := execBuilt(ctx, db, q)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
