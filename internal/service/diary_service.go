package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"queridodiario/internal/database"
	"queridodiario/internal/models"
	"queridodiario/internal/panel"
	"queridodiario/internal/repository"
	"queridodiario/internal/security"
	"queridodiario/internal/validation"
)

// Direction moves a routine one step in its diary's order
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// ActivityInput is the editable part of an activity
type ActivityInput struct {
	Title         string
	Icon          string
	Points        int
	Type          models.ActivityType
	ScheduledTime string
	Days          []models.Weekday
}

// DiaryService handles the administration of diaries, routines and activities.
// Every operation checks that the diary belongs to the calling tenant.
type DiaryService struct {
	db         *database.DB
	diaries    *repository.DiaryRepository
	routines   *repository.RoutineRepository
	activities *repository.ActivityRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewDiaryService creates a new diary service
func NewDiaryService(db *database.DB, logger *zap.Logger) *DiaryService {
	return &DiaryService{
		db:         db,
		diaries:    repository.NewDiaryRepository(db),
		routines:   repository.NewRoutineRepository(db),
		activities: repository.NewActivityRepository(db),
		logger:     logger,
		now:        time.Now,
	}
}

// ListDiaries returns a tenant's diaries
func (s *DiaryService) ListDiaries(ctx context.Context, tenantID string) ([]models.Diary, error) {
	diaries, err := s.diaries.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if diaries == nil {
		diaries = []models.Diary{}
	}
	return diaries, nil
}

// GetDiary retrieves a diary owned by tenantID
func (s *DiaryService) GetDiary(ctx context.Context, tenantID, diaryID string) (*models.Diary, error) {
	diary, err := s.diaries.GetForTenant(ctx, diaryID, tenantID)
	if err != nil {
		return nil, err
	}
	if diary == nil {
		return nil, ErrDiaryNotFound
	}
	return diary, nil
}

// CreateDiary creates a diary with a fresh access token and the default routines
func (s *DiaryService) CreateDiary(ctx context.Context, tenantID, name, avatar string) (*models.Diary, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateRequired("name", name); err != nil {
		return nil, err
	}
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		avatar = models.DefaultDiaryAvatar
	}

	now := s.now().UTC()
	diary := &models.Diary{
		ID:          security.NewID(),
		TenantID:    tenantID,
		Name:        name,
		Avatar:      avatar,
		AccessToken: security.NewAccessToken(),
		CreatedAt:   now,
	}

	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		if err := s.diaries.WithTx(tx).Create(ctx, diary); err != nil {
			return err
		}
		routines := s.routines.WithTx(tx)
		for i, def := range models.DefaultRoutines {
			r := &models.Routine{
				ID:        security.NewID(),
				DiaryID:   diary.ID,
				Name:      def.Name,
				Icon:      def.Icon,
				SortOrder: i,
				CreatedAt: now,
			}
			if err := routines.Create(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Diary created", zap.String("tenant_id", tenantID), zap.String("diary_id", diary.ID))
	return diary, nil
}

// UpdateDiary renames a diary or changes its avatar
func (s *DiaryService) UpdateDiary(ctx context.Context, tenantID, diaryID, name, avatar string) (*models.Diary, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateRequired("name", name); err != nil {
		return nil, err
	}
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		avatar = models.DefaultDiaryAvatar
	}

	ok, err := s.diaries.Update(ctx, diaryID, tenantID, name, avatar)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDiaryNotFound
	}
	return s.GetDiary(ctx, tenantID, diaryID)
}

// RegenerateToken replaces a diary's access token, invalidating links shared before
func (s *DiaryService) RegenerateToken(ctx context.Context, tenantID, diaryID string) (string, error) {
	token := security.NewAccessToken()
	ok, err := s.diaries.UpdateAccessToken(ctx, diaryID, tenantID, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrDiaryNotFound
	}

	s.logger.Info("Diary token regenerated", zap.String("diary_id", diaryID))
	return token, nil
}

// DeleteDiary removes a diary with everything recorded in it
func (s *DiaryService) DeleteDiary(ctx context.Context, tenantID, diaryID string) error {
	ok, err := s.diaries.Delete(ctx, diaryID, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDiaryNotFound
	}

	s.logger.Info("Diary deleted", zap.String("tenant_id", tenantID), zap.String("diary_id", diaryID))
	return nil
}

// ListRoutines returns a diary's routines in display order
func (s *DiaryService) ListRoutines(ctx context.Context, tenantID, diaryID string) ([]models.Routine, error) {
	if _, err := s.GetDiary(ctx, tenantID, diaryID); err != nil {
		return nil, err
	}
	routines, err := s.routines.ListByDiary(ctx, diaryID)
	if err != nil {
		return nil, err
	}
	if routines == nil {
		routines = []models.Routine{}
	}
	return routines, nil
}

// GetRoutine retrieves a routine of a diary owned by tenantID
func (s *DiaryService) GetRoutine(ctx context.Context, tenantID, diaryID, routineID string) (*models.Routine, error) {
	if _, err := s.GetDiary(ctx, tenantID, diaryID); err != nil {
		return nil, err
	}
	routine, err := s.routines.GetForDiary(ctx, routineID, diaryID)
	if err != nil {
		return nil, err
	}
	if routine == nil {
		return nil, ErrRoutineNotFound
	}
	return routine, nil
}

// CreateRoutine adds a routine at the end of the diary's order
func (s *DiaryService) CreateRoutine(ctx context.Context, tenantID, diaryID, name, icon string) (*models.Routine, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateRequired("name", name); err != nil {
		return nil, err
	}
	if _, err := s.GetDiary(ctx, tenantID, diaryID); err != nil {
		return nil, err
	}

	routine := &models.Routine{
		ID:        security.NewID(),
		DiaryID:   diaryID,
		Name:      name,
		Icon:      iconOr(icon, models.DefaultRoutineIcon),
		CreatedAt: s.now().UTC(),
	}

	err := s.db.InTx(ctx, func(tx *database.Tx) error {
		routines := s.routines.WithTx(tx)
		next, err := routines.NextSortOrder(ctx, diaryID)
		if err != nil {
			return err
		}
		routine.SortOrder = next
		return routines.Create(ctx, routine)
	})
	if err != nil {
		return nil, err
	}
	return routine, nil
}

// UpdateRoutine renames a routine or changes its icon
func (s *DiaryService) UpdateRoutine(ctx context.Context, tenantID, diaryID, routineID, name, icon string) (*models.Routine, error) {
	name = strings.TrimSpace(name)
	if err := validation.ValidateRequired("name", name); err != nil {
		return nil, err
	}
	if _, err := s.GetDiary(ctx, tenantID, diaryID); err != nil {
		return nil, err
	}

	ok, err := s.routines.Update(ctx, routineID, diaryID, name, iconOr(icon, models.DefaultRoutineIcon))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoutineNotFound
	}
	return s.GetRoutine(ctx, tenantID, diaryID, routineID)
}

// DeleteRoutine removes a routine with its activities
func (s *DiaryService) DeleteRoutine(ctx context.Context, tenantID, diaryID, routineID string) error {
	if _, err := s.GetDiary(ctx, tenantID, diaryID); err != nil {
		return err
	}
	ok, err := s.routines.Delete(ctx, routineID, diaryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoutineNotFound
	}
	return nil
}

// MoveRoutine exchanges a routine's sort order with its neighbour in direction.
// Moving the first routine up or the last one down does nothing.
func (s *DiaryService) MoveRoutine(ctx context.Context, tenantID, diaryID, routineID string, direction Direction) error {
	if direction != MoveUp && direction != MoveDown {
		return validation.ValidationError{Field: "direction", Message: "direction must be up or down"}
	}
	if _, err := s.GetDiary(ctx, tenantID, diaryID); err != nil {
		return err
	}

	return s.db.InTx(ctx, func(tx *database.Tx) error {
		routines := s.routines.WithTx(tx)
		list, err := routines.ListByDiary(ctx, diaryID)
		if err != nil {
			return err
		}

		idx := -1
		for i, r := range list {
			if r.ID == routineID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrRoutineNotFound
		}

		neighbour := idx - 1
		if direction == MoveDown {
			neighbour = idx + 1
		}
		if neighbour < 0 || neighbour >= len(list) {
			return nil
		}

		current, other := list[idx], list[neighbour]
		if err := routines.SetSortOrder(ctx, current.ID, other.SortOrder); err != nil {
			return err
		}
		return routines.SetSortOrder(ctx, other.ID, current.SortOrder)
	})
}

// ListActivities returns a routine's activities with their weekdays
func (s *DiaryService) ListActivities(ctx context.Context, tenantID, diaryID, routineID string) ([]models.ActivityWithDays, error) {
	if _, err := s.GetRoutine(ctx, tenantID, diaryID, routineID); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByRoutine(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []models.ActivityWithDays{}
	}
	return activities, nil
}

// GetActivity retrieves an activity with its weekdays
func (s *DiaryService) GetActivity(ctx context.Context, tenantID, diaryID, routineID, activityID string) (*models.ActivityWithDays, error) {
	if _, err := s.GetRoutine(ctx, tenantID, diaryID, routineID); err != nil {
		return nil, err
	}
	return s.loadActivity(ctx, s.activities, routineID, activityID)
}

func (s *DiaryService) loadActivity(ctx context.Context, repo *repository.ActivityRepository, routineID, activityID string) (*models.ActivityWithDays, error) {
	activity, err := repo.GetForRoutine(ctx, activityID, routineID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	days, err := repo.ListDays(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return &models.ActivityWithDays{Activity: *activity, Days: days}, nil
}

// CreateActivity adds an activity to a routine. It is placed at the end of each
// selected weekday column.
func (s *DiaryService) CreateActivity(ctx context.Context, tenantID, diaryID, routineID string, in ActivityInput) (*models.ActivityWithDays, error) {
	in, err := normalizeActivity(in, 0)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetRoutine(ctx, tenantID, diaryID, routineID); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		ID:            security.NewID(),
		RoutineID:     routineID,
		Title:         in.Title,
		Icon:          iconOr(in.Icon, models.DefaultActivityIcon),
		Points:        in.Points,
		Type:          in.Type,
		ScheduledTime: in.ScheduledTime,
		CreatedAt:     s.now().UTC(),
	}

	var created *models.ActivityWithDays
	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		activities := s.activities.WithTx(tx)
		if err := activities.Create(ctx, activity); err != nil {
			return err
		}
		for _, day := range in.Days {
			if err := appendDay(ctx, activities, routineID, activity.ID, day); err != nil {
				return err
			}
		}
		created, err = s.loadActivity(ctx, activities, routineID, activity.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateActivity changes an activity and its weekdays. Weekdays it keeps retain
// their position; newly selected ones are appended to their column.
func (s *DiaryService) UpdateActivity(ctx context.Context, tenantID, diaryID, routineID, activityID string, in ActivityInput) (*models.ActivityWithDays, error) {
	in, err := normalizeActivity(in, 1)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetRoutine(ctx, tenantID, diaryID, routineID); err != nil {
		return nil, err
	}

	var updated *models.ActivityWithDays
	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		activities := s.activities.WithTx(tx)
		current, err := s.loadActivity(ctx, activities, routineID, activityID)
		if err != nil {
			return err
		}

		next := current.Activity
		next.Title = in.Title
		next.Icon = iconOr(in.Icon, models.DefaultActivityIcon)
		next.Points = in.Points
		next.Type = in.Type
		next.ScheduledTime = in.ScheduledTime
		if _, err := activities.Update(ctx, &next); err != nil {
			return err
		}

		selected := make(map[models.Weekday]bool, len(in.Days))
		for _, day := range in.Days {
			selected[day] = true
		}
		for _, d := range current.Days {
			if !selected[d.DayOfWeek] {
				if err := activities.DeleteDay(ctx, activityID, d.DayOfWeek); err != nil {
					return err
				}
			}
		}
		for _, day := range in.Days {
			if current.HasDay(day) {
				continue
			}
			if err := appendDay(ctx, activities, routineID, activityID, day); err != nil {
				return err
			}
		}

		updated, err = s.loadActivity(ctx, activities, routineID, activityID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteActivity removes an activity with its weekdays and completions
func (s *DiaryService) DeleteActivity(ctx context.Context, tenantID, diaryID, routineID, activityID string) error {
	if _, err := s.GetRoutine(ctx, tenantID, diaryID, routineID); err != nil {
		return err
	}
	ok, err := s.activities.Delete(ctx, activityID, routineID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrActivityNotFound
	}
	return nil
}

// Board returns a routine's weekday Kanban
func (s *DiaryService) Board(ctx context.Context, tenantID, diaryID, routineID string) (*models.Board, error) {
	routine, err := s.GetRoutine(ctx, tenantID, diaryID, routineID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByRoutine(ctx, routineID)
	if err != nil {
		return nil, err
	}
	board := panel.BuildBoard(*routine, activities)
	return &board, nil
}

// ReorderWeekday persists a new order for one weekday column of a routine.
// ids must list exactly the activities scheduled on day; they get sort orders
// 0..len(ids)-1. Other weekdays are untouched.
func (s *DiaryService) ReorderWeekday(ctx context.Context, tenantID, diaryID, routineID string, day models.Weekday, ids []string) error {
	if !day.Valid() {
		return validation.ValidationError{Field: "day", Message: fmt.Sprintf("invalid weekday %d", int(day))}
	}
	if _, err := s.GetRoutine(ctx, tenantID, diaryID, routineID); err != nil {
		return err
	}

	return s.db.InTx(ctx, func(tx *database.Tx) error {
		activities := s.activities.WithTx(tx)
		list, err := activities.ListByRoutine(ctx, routineID)
		if err != nil {
			return err
		}

		column := make(map[string]bool)
		for _, a := range list {
			if a.HasDay(day) {
				column[a.ID] = true
			}
		}
		if err := sameMembers(column, ids); err != nil {
			return err
		}

		for i, id := range ids {
			if _, err := activities.SetDaySortOrder(ctx, id, day, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveActivity handles a card drop on the board: the card at index from of the
// source column is moved to index to. Drops onto another weekday column are ignored.
func (s *DiaryService) MoveActivity(ctx context.Context, tenantID, diaryID, routineID string, source, dest models.Weekday, from, to int) error {
	if source != dest {
		return nil
	}

	board, err := s.Board(ctx, tenantID, diaryID, routineID)
	if err != nil {
		return err
	}
	column, ok := board.Column(source)
	if !ok {
		return validation.ValidationError{Field: "day", Message: fmt.Sprintf("invalid weekday %d", int(source))}
	}

	ids := column.IDs()
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return validation.ValidationError{Field: "index", Message: "position out of range"}
	}
	if from == to {
		return nil
	}
	return s.ReorderWeekday(ctx, tenantID, diaryID, routineID, source, models.MoveWithin(ids, from, to))
}

func appendDay(ctx context.Context, activities *repository.ActivityRepository, routineID, activityID string, day models.Weekday) error {
	next, err := activities.NextDaySortOrder(ctx, routineID, day)
	if err != nil {
		return err
	}
	return activities.InsertDay(ctx, models.ActivityDay{ActivityID: activityID, DayOfWeek: day, SortOrder: next})
}

// normalizeActivity trims and validates an activity form. Points below minPoints are raised to it.
func normalizeActivity(in ActivityInput, minPoints int) (ActivityInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ScheduledTime = strings.TrimSpace(in.ScheduledTime)

	if err := validation.ValidateRequired("title", in.Title); err != nil {
		return in, err
	}
	if err := validation.ValidateActivityType(in.Type); err != nil {
		return in, err
	}
	if err := validation.ValidateScheduledTime(in.ScheduledTime); err != nil {
		return in, err
	}

	days := make([]models.Weekday, 0, len(in.Days))
	seen := make(map[models.Weekday]bool, len(in.Days))
	for _, d := range in.Days {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	if err := validation.ValidateDays(days); err != nil {
		return in, err
	}
	in.Days = days

	if in.Points < minPoints {
		in.Points = minPoints
	}
	return in, nil
}

func sameMembers(column map[string]bool, ids []string) error {
	if len(ids) != len(column) {
		return validation.ValidationError{Field: "ids", Message: "order must list every activity of the column"}
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !column[id] || seen[id] {
			return validation.ValidationError{Field: "ids", Message: fmt.Sprintf("activity %s is not in the column", id)}
		}
		seen[id] = true
	}
	return nil
}

func iconOr(icon, fallback string) string {
	icon = strings.TrimSpace(icon)
	if icon == "" {
		return fallback
	}
	return icon
}
