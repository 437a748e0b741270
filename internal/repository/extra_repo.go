package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
)

var extraColumns = []string{"id", "diary_id", "routine_id", "date", "title", "points", "icon", "completion_value", "created_at"}

// ExtraActivityRepository handles database operations for extra activities
type ExtraActivityRepository struct {
	db database.DBTX
}

// NewExtraActivityRepository creates a new extra activity repository
func NewExtraActivityRepository(db database.DBTX) *ExtraActivityRepository {
	return &ExtraActivityRepository{db: db}
}

// Create inserts an extra activity
func (r *ExtraActivityRepository) Create(ctx context.Context, e *models.ExtraActivity) error {
	q := r.db.Builder().Insert("extra_activities").Columns(extraColumns...).
		Values(e.ID, e.DiaryID, e.RoutineID, e.Date, e.Title, e.Points, e.Icon, e.CompletionValue, e.CreatedAt)
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to create extra activity: %w", err)
	}
	return nil
}

// GetForDiary retrieves an extra activity of diaryID, or nil
func (r *ExtraActivityRepository) GetForDiary(ctx context.Context, id, diaryID string) (*models.ExtraActivity, error) {
	var e models.ExtraActivity
	q := r.db.Builder().Select(extraColumns...).From("extra_activities").Where(squirrel.Eq{"id": id, "diary_id": diaryID})
	found, err := getOne(ctx, r.db, &e, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get extra activity: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &e, nil
}

// ListForDate returns a diary's extra activities on date in creation order
func (r *ExtraActivityRepository) ListForDate(ctx context.Context, diaryID, date string) ([]models.ExtraActivity, error) {
	var extras []models.ExtraActivity
	q := r.db.Builder().Select(extraColumns...).From("extra_activities").
		Where(squirrel.Eq{"diary_id": diaryID, "date": date}).OrderBy("created_at", "id")
	if err := selectAll(ctx, r.db, &extras, q); err != nil {
		return nil, fmt.Errorf("failed to list extra activities: %w", err)
	}
	return extras, nil
}

// ListAll returns every extra activity
func (r *ExtraActivityRepository) ListAll(ctx context.Context) ([]models.ExtraActivity, error) {
	var extras []models.ExtraActivity
	q := r.db.Builder().Select(extraColumns...).From("extra_activities").OrderBy("diary_id", "date", "created_at", "id")
	if err := selectAll(ctx, r.db, &extras, q); err != nil {
		return nil, fmt.Errorf("failed to list extra activities: %w", err)
	}
	return extras, nil
}

// SetCompletionValue records the single completion of an extra activity
func (r *ExtraActivityRepository) SetCompletionValue(ctx context.Context, id, diaryID string, value int) (bool, error) {
	q := r.db.Builder().Update("extra_activities").Set("completion_value", value).
		Where(squirrel.Eq{"id": id, "diary_id": diaryID})
	ok, err := execOne(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("failed to record extra completion: %w", err)
	}
	return ok, nil
}
