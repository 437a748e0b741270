package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
)

var dayNoteColumns = []string{"id", "diary_id", "date", "content", "created_at", "updated_at"}

// DayNoteRepository handles database operations for day notes
type DayNoteRepository struct {
	db database.DBTX
}

// NewDayNoteRepository creates a new day note repository
func NewDayNoteRepository(db database.DBTX) *DayNoteRepository {
	return &DayNoteRepository{db: db}
}

// Upsert stores the note for (diary, date), replacing the existing content
func (r *DayNoteRepository) Upsert(ctx context.Context, n *models.DayNote) error {
	_, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertDayNoteQuery(),
		n.ID, n.DiaryID, n.Date, n.Content, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

// Delete removes the note for (diary, date) if there is one
func (r *DayNoteRepository) Delete(ctx context.Context, diaryID, date string) error {
	q := r.db.Builder().Delete("day_notes").Where(squirrel.Eq{"diary_id": diaryID, "date": date})
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// Get retrieves the note for (diary, date), or nil
func (r *DayNoteRepository) Get(ctx context.Context, diaryID, date string) (*models.DayNote, error) {
	var n models.DayNote
	q := r.db.Builder().Select(dayNoteColumns...).From("day_notes").Where(squirrel.Eq{"diary_id": diaryID, "date": date})
	found, err := getOne(ctx, r.db, &n, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &n, nil
}

// ListAll returns every note
func (r *DayNoteRepository) ListAll(ctx context.Context) ([]models.DayNote, error) {
	var notes []models.DayNote
	if err := selectAll(ctx, r.db, &notes, r.db.Builder().Select(dayNoteColumns...).From("day_notes").OrderBy("diary_id", "date")); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
