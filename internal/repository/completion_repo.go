package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
)

var completionColumns = []string{"id", "activity_id", "diary_id", "date", "value", "comment", "binary_slot", "created_at"}

// CompletionRepository handles database operations for completions
type CompletionRepository struct {
	db database.DBTX
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(db database.DBTX) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *CompletionRepository) WithTx(tx *database.Tx) *CompletionRepository {
	return &CompletionRepository{db: tx}
}

// UpsertBinary stores the single completion of a binary activity for (activity, diary, date),
// replacing any existing one. Run it inside a transaction: rows left without a binary slot
// (for example from an activity that used to be incremental) are removed first.
func (r *CompletionRepository) UpsertBinary(ctx context.Context, c *models.Completion) (*models.Completion, error) {
	key := squirrel.Eq{"activity_id": c.ActivityID, "diary_id": c.DiaryID, "date": c.Date}

	stray := r.db.Builder().Delete("completions").Where(key).Where(squirrel.Eq{"binary_slot": nil})
	if _, err := execBuilt(ctx, r.db, stray); err != nil {
		return nil, fmt.Errorf("failed to clear completions: %w", err)
	}

	_, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertCompletionQuery(),
		c.ID, c.ActivityID, c.DiaryID, c.Date, c.Value, c.Comment, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert completion: %w", err)
	}

	var stored models.Completion
	q := r.db.Builder().Select(completionColumns...).From("completions").
		Where(key).Where(squirrel.Eq{"binary_slot": 0})
	found, err := getOne(ctx, r.db, &stored, q)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("failed to read completion: %w", sql.ErrNoRows)
	}
	return &stored, nil
}

// Append adds a completion of an incremental activity
func (r *CompletionRepository) Append(ctx context.Context, c *models.Completion) error {
	c.BinarySlot = nil
	return r.Insert(ctx, c)
}

// Insert writes a completion row as given
func (r *CompletionRepository) Insert(ctx context.Context, c *models.Completion) error {
	q := r.db.Builder().Insert("completions").Columns(completionColumns...).
		Values(c.ID, c.ActivityID, c.DiaryID, c.Date, c.Value, c.Comment, c.BinarySlot, c.CreatedAt)
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

// ListForDate returns a diary's completions on date in creation order
func (r *CompletionRepository) ListForDate(ctx context.Context, diaryID, date string) ([]models.Completion, error) {
	var completions []models.Completion
	q := r.db.Builder().Select(completionColumns...).From("completions").
		Where(squirrel.Eq{"diary_id": diaryID, "date": date}).
		OrderBy("created_at", "id")
	if err := selectAll(ctx, r.db, &completions, q); err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

// ListForKey returns the completions of one activity on one date
func (r *CompletionRepository) ListForKey(ctx context.Context, activityID, diaryID, date string) ([]models.Completion, error) {
	var completions []models.Completion
	q := r.db.Builder().Select(completionColumns...).From("completions").
		Where(squirrel.Eq{"activity_id": activityID, "diary_id": diaryID, "date": date}).
		OrderBy("created_at", "id")
	if err := selectAll(ctx, r.db, &completions, q); err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

// ListAll returns every completion
func (r *CompletionRepository) ListAll(ctx context.Context) ([]models.Completion, error) {
	var completions []models.Completion
	q := r.db.Builder().Select(completionColumns...).From("completions").OrderBy("diary_id", "date", "created_at", "id")
	if err := selectAll(ctx, r.db, &completions, q); err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

// LatestDate returns the most recent date with a completion for a diary, or "" if none.
// Dates are stored as YYYY-MM-DD so the lexical maximum is the latest date.
func (r *CompletionRepository) LatestDate(ctx context.Context, diaryID string) (string, error) {
	var latest sql.NullString
	q := r.db.Builder().Select("MAX(date)").From("completions").Where(squirrel.Eq{"diary_id": diaryID})
	if _, err := getOne(ctx, r.db, &latest, q); err != nil {
		return "", fmt.Errorf("failed to get latest completion date: %w", err)
	}
	return latest.String, nil
}
