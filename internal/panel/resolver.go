// Package panel resolves the read model of a diary's panel for one calendar date.
// It works on collections already loaded from storage and has no side effects.
package panel

import (
	"sort"

	"queridodiario/internal/models"
)

// DayInput is everything loaded for a diary before resolving a date
type DayInput struct {
	Diary       models.Diary
	Date        string
	Routines    []models.Routine
	Activities  []models.ActivityWithDays
	Completions []models.Completion
	Extras      []models.ExtraActivity
	Note        *models.DayNote
}

// ResolveDate picks the date to show: the requested one, else the last date with a
// completion, else today
func ResolveDate(requested, lastActive, today string) string {
	if requested != "" {
		return requested
	}
	if lastActive != "" {
		return lastActive
	}
	return today
}

// Resolve builds the day snapshot for in.Date
func Resolve(in DayInput) (models.DaySnapshot, error) {
	weekday, err := models.WeekdayOf(in.Date)
	if err != nil {
		return models.DaySnapshot{}, err
	}

	completionsByActivity := make(map[string][]models.Completion)
	for _, c := range in.Completions {
		if c.Date != in.Date || c.DiaryID != in.Diary.ID {
			continue
		}
		completionsByActivity[c.ActivityID] = append(completionsByActivity[c.ActivityID], c)
	}

	activitiesByRoutine := make(map[string][]models.ActivityView)
	for _, a := range in.Activities {
		day, ok := a.DayFor(weekday)
		if !ok {
			continue
		}
		activitiesByRoutine[a.RoutineID] = append(activitiesByRoutine[a.RoutineID],
			scheduledView(a.Activity, day.SortOrder, completionsByActivity[a.ID]))
	}

	for _, e := range in.Extras {
		if e.Date != in.Date || e.DiaryID != in.Diary.ID {
			continue
		}
		activitiesByRoutine[e.RoutineID] = append(activitiesByRoutine[e.RoutineID], extraView(e))
	}

	routines := make([]models.Routine, len(in.Routines))
	copy(routines, in.Routines)
	sort.SliceStable(routines, func(i, j int) bool { return routines[i].SortOrder < routines[j].SortOrder })

	snap := models.DaySnapshot{
		Diary: models.DiarySummary{
			ID:     in.Diary.ID,
			Name:   in.Diary.Name,
			Avatar: in.Diary.Avatar,
		},
		Date:      in.Date,
		DayOfWeek: weekday,
		Routines:  make([]models.RoutineView, 0, len(routines)),
	}
	if in.Note != nil {
		snap.Note = in.Note.Content
	}

	for _, r := range routines {
		activities := activitiesByRoutine[r.ID]
		if activities == nil {
			activities = []models.ActivityView{}
		}
		sort.SliceStable(activities, func(i, j int) bool { return activities[i].SortOrder < activities[j].SortOrder })

		view := models.RoutineView{
			ID:         r.ID,
			Name:       r.Name,
			Icon:       r.Icon,
			SortOrder:  r.SortOrder,
			Activities: activities,
		}
		for _, a := range activities {
			snap.TotalPoints += a.Value
			if a.Type == models.ActivityBinary {
				view.Progress.Add(a.Status)
			}
		}
		view.Complete = view.Progress.Total > 0 && view.Progress.Marked == view.Progress.Total

		snap.Progress.Merge(view.Progress)
		snap.Routines = append(snap.Routines, view)
	}

	return snap, nil
}

func scheduledView(a models.Activity, sortOrder int, completions []models.Completion) models.ActivityView {
	sort.SliceStable(completions, func(i, j int) bool { return completions[i].CreatedAt.Before(completions[j].CreatedAt) })

	view := models.ActivityView{
		ID:            a.ID,
		Title:         a.Title,
		Icon:          a.Icon,
		Points:        a.Points,
		Type:          a.Type,
		ScheduledTime: a.ScheduledTime,
		SortOrder:     sortOrder,
		Completions:   make([]models.CompletionView, 0, len(completions)),
	}

	values := make([]int, 0, len(completions))
	for _, c := range completions {
		view.Completions = append(view.Completions, models.CompletionView{
			ID:        c.ID,
			Value:     c.Value,
			Comment:   c.Comment,
			CreatedAt: c.CreatedAt,
		})
		view.Value += c.Value
		values = append(values, c.Value)
	}
	view.Count = len(completions)

	if a.Type == models.ActivityBinary {
		view.Status = models.BinaryStatus(values)
	}
	return view
}

func extraView(e models.ExtraActivity) models.ActivityView {
	icon := e.Icon
	if icon == "" {
		icon = models.DefaultActivityIcon
	}

	view := models.ActivityView{
		ID:          e.ID,
		Title:       e.Title,
		Icon:        icon,
		Points:      e.Points,
		Type:        models.ActivityBinary,
		SortOrder:   models.ExtraSortOrder,
		IsExtra:     true,
		Completions: []models.CompletionView{},
		Status:      models.StatusPending,
	}
	if e.CompletionValue != nil {
		view.Completions = append(view.Completions, models.CompletionView{
			ID:        e.ID,
			Value:     *e.CompletionValue,
			CreatedAt: e.CreatedAt,
		})
		view.Value = *e.CompletionValue
		view.Count = 1
		view.Status = models.StatusForValue(*e.CompletionValue)
	}
	return view
}
