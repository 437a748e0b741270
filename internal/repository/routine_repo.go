package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
)

var routineColumns = []string{"id", "diary_id", "name", "icon", "sort_order", "created_at"}

// RoutineRepository handles database operations for routines
type RoutineRepository struct {
	db database.DBTX
}

// NewRoutineRepository creates a new routine repository
func NewRoutineRepository(db database.DBTX) *RoutineRepository {
	return &RoutineRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *RoutineRepository) WithTx(tx *database.Tx) *RoutineRepository {
	return &RoutineRepository{db: tx}
}

// Create inserts a routine
func (r *RoutineRepository) Create(ctx context.Context, rt *models.Routine) error {
	q := r.db.Builder().Insert("routines").Columns(routineColumns...).
		Values(rt.ID, rt.DiaryID, rt.Name, rt.Icon, rt.SortOrder, rt.CreatedAt)
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to create routine: %w", err)
	}
	return nil
}

// GetForDiary retrieves a routine that belongs to diaryID, or nil
func (r *RoutineRepository) GetForDiary(ctx context.Context, id, diaryID string) (*models.Routine, error) {
	var rt models.Routine
	q := r.db.Builder().Select(routineColumns...).From("routines").Where(squirrel.Eq{"id": id, "diary_id": diaryID})
	found, err := getOne(ctx, r.db, &rt, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get routine: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &rt, nil
}

// ListByDiary returns a diary's routines in display order
func (r *RoutineRepository) ListByDiary(ctx context.Context, diaryID string) ([]models.Routine, error) {
	var routines []models.Routine
	q := r.db.Builder().Select(routineColumns...).From("routines").
		Where(squirrel.Eq{"diary_id": diaryID}).OrderBy("sort_order", "created_at", "id")
	if err := selectAll(ctx, r.db, &routines, q); err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	return routines, nil
}

// ListAll returns every routine
func (r *RoutineRepository) ListAll(ctx context.Context) ([]models.Routine, error) {
	var routines []models.Routine
	q := r.db.Builder().Select(routineColumns...).From("routines").OrderBy("diary_id", "sort_order", "id")
	if err := selectAll(ctx, r.db, &routines, q); err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	return routines, nil
}

// NextSortOrder returns the position after the last routine of a diary
func (r *RoutineRepository) NextSortOrder(ctx context.Context, diaryID string) (int, error) {
	var maxOrder sql.NullInt64
	q := r.db.Builder().Select("MAX(sort_order)").From("routines").Where(squirrel.Eq{"diary_id": diaryID})
	if _, err := getOne(ctx, r.db, &maxOrder, q); err != nil {
		return 0, fmt.Errorf("failed to get routine order: %w", err)
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

// Update changes a routine's name and icon
func (r *RoutineRepository) Update(ctx context.Context, id, diaryID, name, icon string) (bool, error) {
	q := r.db.Builder().Update("routines").Set("name", name).Set("icon", icon).
		Where(squirrel.Eq{"id": id, "diary_id": diaryID})
	ok, err := execOne(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("failed to update routine: %w", err)
	}
	return ok, nil
}

// SetSortOrder moves a routine to position order
func (r *RoutineRepository) SetSortOrder(ctx context.Context, id string, order int) error {
	if _, err := execBuilt(ctx, r.db, r.db.Builder().Update("routines").Set("sort_order", order).Where(squirrel.Eq{"id": id})); err != nil {
		return fmt.Errorf("failed to reorder routine: %w", err)
	}
	return nil
}

// Delete removes a routine with its activities
func (r *RoutineRepository) Delete(ctx context.Context, id, diaryID string) (bool, error) {
	ok, err := execOne(ctx, r.db, r.db.Builder().Delete("routines").Where(squirrel.Eq{"id": id, "diary_id": diaryID}))
	if err != nil {
		return false, fmt.Errorf("failed to delete routine: %w", err)
	}
	return ok, nil
}
