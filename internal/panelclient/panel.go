package panelclient

import (
	"context"
	"fmt"
	"sync"

	"queridodiario/internal/models"
	"queridodiario/internal/service"
)

// Panel holds the day currently shown for one diary. Every mutation refetches
// that day, so Snapshot always reflects the server after a call returns.
type Panel struct {
	client *Client

	mu       sync.Mutex
	date     string
	snapshot *models.DaySnapshot
}

// NewPanel creates a panel bound to client. Nothing is fetched until Load.
func NewPanel(client *Client) *Panel {
	return &Panel{client: client}
}

// Snapshot returns the cached day, or nil before the first load
func (p *Panel) Snapshot() *models.DaySnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Date returns the day being viewed, empty before the first load
func (p *Panel) Date() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}

// Load fetches the current day, or the server's default day on first use
func (p *Panel) Load(ctx context.Context) (*models.DaySnapshot, error) {
	return p.fetch(ctx, p.Date())
}

// GoToDay switches to date and fetches it
func (p *Panel) GoToDay(ctx context.Context, date string) (*models.DaySnapshot, error) {
	if _, err := models.ParseDate(date); err != nil {
		return nil, err
	}
	return p.fetch(ctx, date)
}

// Step moves the view by days relative to the current date
func (p *Panel) Step(ctx context.Context, days int) (*models.DaySnapshot, error) {
	current := p.Date()
	if current == "" {
		snap, err := p.Load(ctx)
		if err != nil {
			return nil, err
		}
		current = snap.Date
	}

	next, err := models.AddDays(current, days)
	if err != nil {
		return nil, err
	}
	return p.fetch(ctx, next)
}

// Refresh refetches the current day
func (p *Panel) Refresh(ctx context.Context) (*models.DaySnapshot, error) {
	return p.Load(ctx)
}

// Invalidate drops the cached snapshot. The viewed date is kept.
func (p *Panel) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = nil
}

func (p *Panel) fetch(ctx context.Context, date string) (*models.DaySnapshot, error) {
	snap, err := p.client.Snapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.date = snap.Date
	p.snapshot = snap
	p.mu.Unlock()
	return snap, nil
}

// activity finds id on the current day, loading it if needed
func (p *Panel) activity(ctx context.Context, id string) (models.ActivityView, string, error) {
	snap := p.Snapshot()
	if snap == nil {
		var err error
		if snap, err = p.Load(ctx); err != nil {
			return models.ActivityView{}, "", err
		}
	}

	a, ok := snap.FindActivity(id)
	if !ok {
		return models.ActivityView{}, "", fmt.Errorf("activity %s is not on %s: %w", id, snap.Date, ErrNotFound)
	}
	return a, snap.Date, nil
}

// Mark sets the status of a binary or extra activity: done scores its points,
// not done subtracts them and skipped scores zero.
func (p *Panel) Mark(ctx context.Context, activityID string, status models.CompletionStatus) (*models.DaySnapshot, error) {
	a, date, err := p.activity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if a.Type == models.ActivityIncremental && !a.IsExtra {
		return nil, fmt.Errorf("activity %s is incremental, use Tap", activityID)
	}

	var value int
	switch status {
	case models.StatusDone:
		value = a.Points
	case models.StatusNotDone:
		value = -a.Points
	case models.StatusSkipped:
		value = 0
	default:
		return nil, fmt.Errorf("cannot mark activity as %q", status)
	}

	in := service.CompletionInput{ActivityID: a.ID, Date: date, Value: &value, IsExtra: a.IsExtra}
	if _, err := p.client.Complete(ctx, in); err != nil {
		return nil, err
	}
	return p.fetch(ctx, date)
}

// Skip marks a binary activity as skipped
func (p *Panel) Skip(ctx context.Context, activityID string) (*models.DaySnapshot, error) {
	return p.Mark(ctx, activityID, models.StatusSkipped)
}

// Tap adds one positive or negative occurrence of an incremental activity, with
// an optional comment
func (p *Panel) Tap(ctx context.Context, activityID string, positive bool, comment string) (*models.DaySnapshot, error) {
	a, date, err := p.activity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if a.Type != models.ActivityIncremental || a.IsExtra {
		return nil, fmt.Errorf("activity %s is not incremental, use Mark", activityID)
	}

	value := a.Points
	if !positive {
		value = -value
	}
	in := service.CompletionInput{ActivityID: a.ID, Date: date, Value: &value}
	if comment != "" {
		in.Comment = &comment
	}
	if _, err := p.client.Complete(ctx, in); err != nil {
		return nil, err
	}
	return p.fetch(ctx, date)
}

// SaveNote replaces the note of the current day. Blank content clears it.
func (p *Panel) SaveNote(ctx context.Context, content string) (*models.DaySnapshot, error) {
	date, err := p.currentDate(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := p.client.SaveNote(ctx, date, content); err != nil {
		return nil, err
	}
	return p.fetch(ctx, date)
}

// AddExtra adds a one-off activity to a routine on the current day. A nil points
// value uses the server default.
func (p *Panel) AddExtra(ctx context.Context, routineID, title string, points *int, icon string) (*models.ExtraActivity, *models.DaySnapshot, error) {
	date, err := p.currentDate(ctx)
	if err != nil {
		return nil, nil, err
	}

	extra, err := p.client.CreateExtraActivity(ctx, service.ExtraActivityInput{
		RoutineID: routineID,
		Date:      date,
		Title:     title,
		Points:    points,
		Icon:      icon,
	})
	if err != nil {
		return nil, nil, err
	}

	snap, err := p.fetch(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	return extra, snap, nil
}

func (p *Panel) currentDate(ctx context.Context) (string, error) {
	if date := p.Date(); date != "" {
		return date, nil
	}
	snap, err := p.Load(ctx)
	if err != nil {
		return "", err
	}
	return snap.Date, nil
}
