package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"queridodiario/internal/database"
	"queridodiario/internal/metrics"
	"queridodiario/internal/models"
	"queridodiario/internal/panel"
	"queridodiario/internal/repository"
	"queridodiario/internal/security"
	"queridodiario/internal/validation"
)

// CompletionInput is a caregiver's mark or tap on the panel
type CompletionInput struct {
	ActivityID string  `json:"activityId"`
	Date       string  `json:"date"`
	Value      *int    `json:"value"`
	Comment    *string `json:"comment,omitempty"`
	IsExtra    bool    `json:"isExtra,omitempty"`
}

// ExtraActivityInput is an ad-hoc activity added from the panel for one date
type ExtraActivityInput struct {
	RoutineID string `json:"routineId"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Points    *int   `json:"points,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// CompletionResult holds the stored mark: a completion row, or the extra
// activity carrying its own value
type CompletionResult struct {
	Completion    *models.Completion    `json:"completion,omitempty"`
	ExtraActivity *models.ExtraActivity `json:"extraActivity,omitempty"`
}

// PanelService serves the token-gated daily panel of a diary
type PanelService struct {
	db          *database.DB
	diaries     *repository.DiaryRepository
	routines    *repository.RoutineRepository
	activities  *repository.ActivityRepository
	completions *repository.CompletionRepository
	notes       *repository.DayNoteRepository
	extras      *repository.ExtraActivityRepository
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewPanelService creates a panel service. location decides which calendar day is "today".
func NewPanelService(db *database.DB, location *time.Location, logger *zap.Logger) *PanelService {
	if location == nil {
		location = time.UTC
	}
	return &PanelService{
		db:          db,
		diaries:     repository.NewDiaryRepository(db),
		routines:    repository.NewRoutineRepository(db),
		activities:  repository.NewActivityRepository(db),
		completions: repository.NewCompletionRepository(db),
		notes:       repository.NewDayNoteRepository(db),
		extras:      repository.NewExtraActivityRepository(db),
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// DiaryForToken resolves an access token to its diary
func (s *PanelService) DiaryForToken(ctx context.Context, token string) (*models.Diary, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}
	diary, err := s.diaries.GetByAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if diary == nil {
		return nil, ErrUnauthorized
	}
	return diary, nil
}

// Today returns the current calendar date in the configured location
func (s *PanelService) Today() string {
	return models.Today(s.now(), s.location)
}

// Snapshot resolves the panel of a diary for date. An empty date means the last
// date with a completion, or today when nothing was recorded yet.
func (s *PanelService) Snapshot(ctx context.Context, diary *models.Diary, date string) (*models.DaySnapshot, error) {
	if date != "" {
		if err := validation.ValidateDate(date); err != nil {
			return nil, err
		}
	} else {
		latest, err := s.completions.LatestDate(ctx, diary.ID)
		if err != nil {
			return nil, err
		}
		date = panel.ResolveDate("", latest, s.Today())
	}

	in, err := s.load(ctx, diary, date)
	if err != nil {
		return nil, err
	}
	snap, err := panel.Resolve(in)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *PanelService) load(ctx context.Context, diary *models.Diary, date string) (panel.DayInput, error) {
	in := panel.DayInput{Diary: *diary, Date: date}

	var err error
	if in.Routines, err = s.routines.ListByDiary(ctx, diary.ID); err != nil {
		return in, err
	}
	if in.Activities, err = s.activities.ListByDiary(ctx, diary.ID); err != nil {
		return in, err
	}
	if in.Completions, err = s.completions.ListForDate(ctx, diary.ID, date); err != nil {
		return in, err
	}
	if in.Extras, err = s.extras.ListForDate(ctx, diary.ID, date); err != nil {
		return in, err
	}
	if in.Note, err = s.notes.Get(ctx, diary.ID, date); err != nil {
		return in, err
	}
	return in, nil
}

// RecordCompletion applies a mark to an activity of the diary. Binary activities keep
// a single completion per date that each mark replaces; incremental activities get a
// new completion per tap; extra activities store the value on their own row.
func (s *PanelService) RecordCompletion(ctx context.Context, diary *models.Diary, in CompletionInput) (*CompletionResult, error) {
	if err := validation.ValidateRequired("activityId", in.ActivityID); err != nil {
		return nil, err
	}
	if err := validation.ValidateDate(in.Date); err != nil {
		return nil, err
	}
	if in.Value == nil {
		return nil, validation.ValidationError{Field: "value", Message: "value is required"}
	}

	if in.IsExtra {
		return s.recordExtra(ctx, diary, in.ActivityID, *in.Value)
	}

	activity, err := s.activities.GetForDiary(ctx, in.ActivityID, diary.ID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}

	c := &models.Completion{
		ID:         security.NewID(),
		ActivityID: activity.ID,
		DiaryID:    diary.ID,
		Date:       in.Date,
		Value:      *in.Value,
		Comment:    trimComment(in.Comment),
		CreatedAt:  s.now().UTC(),
	}

	if activity.Type == models.ActivityBinary {
		var stored *models.Completion
		err := s.db.InTx(ctx, func(tx *database.Tx) error {
			var err error
			stored, err = s.completions.WithTx(tx).UpsertBinary(ctx, c)
			return err
		})
		if err != nil {
			return nil, err
		}
		metrics.CompletionsRecorded.WithLabelValues(string(models.ActivityBinary)).Inc()
		return &CompletionResult{Completion: stored}, nil
	}

	if err := s.completions.Append(ctx, c); err != nil {
		return nil, err
	}
	metrics.CompletionsRecorded.WithLabelValues(string(models.ActivityIncremental)).Inc()
	return &CompletionResult{Completion: c}, nil
}

func (s *PanelService) recordExtra(ctx context.Context, diary *models.Diary, id string, value int) (*CompletionResult, error) {
	ok, err := s.extras.SetCompletionValue(ctx, id, diary.ID, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrExtraNotFound
	}

	extra, err := s.extras.GetForDiary(ctx, id, diary.ID)
	if err != nil {
		return nil, err
	}
	if extra == nil {
		return nil, ErrExtraNotFound
	}
	metrics.CompletionsRecorded.WithLabelValues("extra").Inc()
	return &CompletionResult{ExtraActivity: extra}, nil
}

// SaveNote stores the trimmed note of a date. Blank content clears the note and
// returns nil.
func (s *PanelService) SaveNote(ctx context.Context, diary *models.Diary, date, content string) (*models.DayNote, error) {
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		if err := s.notes.Delete(ctx, diary.ID, date); err != nil {
			return nil, err
		}
		metrics.NotesSaved.WithLabelValues("cleared").Inc()
		return nil, nil
	}

	now := s.now().UTC()
	note := &models.DayNote{
		ID:        security.NewID(),
		DiaryID:   diary.ID,
		Date:      date,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notes.Upsert(ctx, note); err != nil {
		return nil, err
	}
	metrics.NotesSaved.WithLabelValues("saved").Inc()

	stored, err := s.notes.Get(ctx, diary.ID, date)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("failed to read note: note for %s vanished", date)
	}
	return stored, nil
}

// CreateExtraActivity adds an unscheduled activity to a routine for one date
func (s *PanelService) CreateExtraActivity(ctx context.Context, diary *models.Diary, in ExtraActivityInput) (*models.ExtraActivity, error) {
	if err := validation.ValidateRequired("routineId", in.RoutineID); err != nil {
		return nil, err
	}
	if err := validation.ValidateDate(in.Date); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if err := validation.ValidateRequired("title", title); err != nil {
		return nil, err
	}

	routine, err := s.routines.GetForDiary(ctx, in.RoutineID, diary.ID)
	if err != nil {
		return nil, err
	}
	if routine == nil {
		return nil, ErrRoutineNotFound
	}

	points := 1
	if in.Points != nil {
		points = *in.Points
	}

	extra := &models.ExtraActivity{
		ID:        security.NewID(),
		DiaryID:   diary.ID,
		RoutineID: routine.ID,
		Date:      in.Date,
		Title:     title,
		Points:    points,
		Icon:      iconOr(in.Icon, models.DefaultActivityIcon),
		CreatedAt: s.now().UTC(),
	}
	if err := s.extras.Create(ctx, extra); err != nil {
		return nil, err
	}
	return extra, nil
}

func trimComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
