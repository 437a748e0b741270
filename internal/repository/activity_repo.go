package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
)

var activityColumns = []string{"id", "routine_id", "title", "icon", "points", "type", "scheduled_time", "created_at"}

var activityDayColumns = []string{"activity_id", "day_of_week", "sort_order"}

// ActivityRepository handles database operations for activities and their weekday rows
type ActivityRepository struct {
	db database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ActivityRepository) WithTx(tx *database.Tx) *ActivityRepository {
	return &ActivityRepository{db: tx}
}

func qualified(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = fmt.Sprintf("%s.%s AS %s", alias, c, c)
	}
	return out
}

// Create inserts an activity without weekday rows
func (r *ActivityRepository) Create(ctx context.Context, a *models.Activity) error {
	q := r.db.Builder().Insert("activities").Columns(activityColumns...).
		Values(a.ID, a.RoutineID, a.Title, a.Icon, a.Points, string(a.Type), a.ScheduledTime, a.CreatedAt)
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetForDiary retrieves an activity whose routine belongs to diaryID, or nil
func (r *ActivityRepository) GetForDiary(ctx context.Context, id, diaryID string) (*models.Activity, error) {
	q := r.db.Builder().Select(qualified("a", activityColumns)...).From("activities a").
		Join("routines r ON r.id = a.routine_id").
		Where(squirrel.Eq{"a.id": id, "r.diary_id": diaryID})
	return r.get(ctx, q)
}

// GetForRoutine retrieves an activity of routineID, or nil
func (r *ActivityRepository) GetForRoutine(ctx context.Context, id, routineID string) (*models.Activity, error) {
	q := r.db.Builder().Select(activityColumns...).From("activities").
		Where(squirrel.Eq{"id": id, "routine_id": routineID})
	return r.get(ctx, q)
}

func (r *ActivityRepository) get(ctx context.Context, q squirrel.Sqlizer) (*models.Activity, error) {
	var a models.Activity
	found, err := getOne(ctx, r.db, &a, q)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &a, nil
}

// ListByRoutine returns a routine's activities with their weekday rows
func (r *ActivityRepository) ListByRoutine(ctx context.Context, routineID string) ([]models.ActivityWithDays, error) {
	var activities []models.Activity
	q := r.db.Builder().Select(activityColumns...).From("activities").
		Where(squirrel.Eq{"routine_id": routineID}).OrderBy("created_at", "id")
	if err := selectAll(ctx, r.db, &activities, q); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	var days []models.ActivityDay
	dq := r.db.Builder().Select(qualified("d", activityDayColumns)...).From("activity_days d").
		Join("activities a ON a.id = d.activity_id").
		Where(squirrel.Eq{"a.routine_id": routineID})
	if err := selectAll(ctx, r.db, &days, dq); err != nil {
		return nil, fmt.Errorf("failed to list activity days: %w", err)
	}

	return attachDays(activities, days), nil
}

// ListByDiary returns every activity of a diary's routines with their weekday rows
func (r *ActivityRepository) ListByDiary(ctx context.Context, diaryID string) ([]models.ActivityWithDays, error) {
	var activities []models.Activity
	q := r.db.Builder().Select(qualified("a", activityColumns)...).From("activities a").
		Join("routines r ON r.id = a.routine_id").
		Where(squirrel.Eq{"r.diary_id": diaryID}).OrderBy("a.created_at", "a.id")
	if err := selectAll(ctx, r.db, &activities, q); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	var days []models.ActivityDay
	dq := r.db.Builder().Select(qualified("d", activityDayColumns)...).From("activity_days d").
		Join("activities a ON a.id = d.activity_id").
		Join("routines r ON r.id = a.routine_id").
		Where(squirrel.Eq{"r.diary_id": diaryID})
	if err := selectAll(ctx, r.db, &days, dq); err != nil {
		return nil, fmt.Errorf("failed to list activity days: %w", err)
	}

	return attachDays(activities, days), nil
}

// ListAll returns every activity
func (r *ActivityRepository) ListAll(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	q := r.db.Builder().Select(activityColumns...).From("activities").OrderBy("routine_id", "created_at", "id")
	if err := selectAll(ctx, r.db, &activities, q); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// ListAllDays returns every weekday row
func (r *ActivityRepository) ListAllDays(ctx context.Context) ([]models.ActivityDay, error) {
	var days []models.ActivityDay
	q := r.db.Builder().Select(activityDayColumns...).From("activity_days").OrderBy("activity_id", "day_of_week")
	if err := selectAll(ctx, r.db, &days, q); err != nil {
		return nil, fmt.Errorf("failed to list activity days: %w", err)
	}
	return days, nil
}

// ListDays returns the weekday rows of one activity
func (r *ActivityRepository) ListDays(ctx context.Context, activityID string) ([]models.ActivityDay, error) {
	var days []models.ActivityDay
	q := r.db.Builder().Select(activityDayColumns...).From("activity_days").
		Where(squirrel.Eq{"activity_id": activityID}).OrderBy("day_of_week")
	if err := selectAll(ctx, r.db, &days, q); err != nil {
		return nil, fmt.Errorf("failed to list activity days: %w", err)
	}
	return days, nil
}

// Update changes an activity's attributes
func (r *ActivityRepository) Update(ctx context.Context, a *models.Activity) (bool, error) {
	q := r.db.Builder().Update("activities").
		Set("title", a.Title).
		Set("icon", a.Icon).
		Set("points", a.Points).
		Set("type", string(a.Type)).
		Set("scheduled_time", a.ScheduledTime).
		Where(squirrel.Eq{"id": a.ID, "routine_id": a.RoutineID})
	ok, err := execOne(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("failed to update activity: %w", err)
	}
	return ok, nil
}

// Delete removes an activity with its weekday rows and completions
func (r *ActivityRepository) Delete(ctx context.Context, id, routineID string) (bool, error) {
	ok, err := execOne(ctx, r.db, r.db.Builder().Delete("activities").Where(squirrel.Eq{"id": id, "routine_id": routineID}))
	if err != nil {
		return false, fmt.Errorf("failed to delete activity: %w", err)
	}
	return ok, nil
}

// InsertDay schedules an activity on a weekday
func (r *ActivityRepository) InsertDay(ctx context.Context, d models.ActivityDay) error {
	q := r.db.Builder().Insert("activity_days").Columns(activityDayColumns...).
		Values(d.ActivityID, int(d.DayOfWeek), d.SortOrder)
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to insert activity day: %w", err)
	}
	return nil
}

// DeleteDay unschedules an activity from a weekday
func (r *ActivityRepository) DeleteDay(ctx context.Context, activityID string, day models.Weekday) error {
	q := r.db.Builder().Delete("activity_days").
		Where(squirrel.Eq{"activity_id": activityID, "day_of_week": int(day)})
	if _, err := execBuilt(ctx, r.db, q); err != nil {
		return fmt.Errorf("failed to delete activity day: %w", err)
	}
	return nil
}

// NextDaySortOrder returns the position after the last activity of a routine's weekday column
func (r *ActivityRepository) NextDaySortOrder(ctx context.Context, routineID string, day models.Weekday) (int, error) {
	var maxOrder sql.NullInt64
	q := r.db.Builder().Select("MAX(d.sort_order)").From("activity_days d").
		Join("activities a ON a.id = d.activity_id").
		Where(squirrel.Eq{"a.routine_id": routineID, "d.day_of_week": int(day)})
	if _, err := getOne(ctx, r.db, &maxOrder, q); err != nil {
		return 0, fmt.Errorf("failed to get day order: %w", err)
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

// SetDaySortOrder moves an activity to position order within one weekday column
func (r *ActivityRepository) SetDaySortOrder(ctx context.Context, activityID string, day models.Weekday, order int) (bool, error) {
	q := r.db.Builder().Update("activity_days").Set("sort_order", order).
		Where(squirrel.Eq{"activity_id": activityID, "day_of_week": int(day)})
	ok, err := execOne(ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("failed to reorder activity: %w", err)
	}
	return ok, nil
}

func attachDays(activities []models.Activity, days []models.ActivityDay) []models.ActivityWithDays {
	byActivity := make(map[string][]models.ActivityDay, len(activities))
	for _, d := range days {
		byActivity[d.ActivityID] = append(byActivity[d.ActivityID], d)
	}

	out := make([]models.ActivityWithDays, len(activities))
	for i, a := range activities {
		out[i] = models.ActivityWithDays{Activity: a, Days: byActivity[a.ID]}
	}
	return out
}
