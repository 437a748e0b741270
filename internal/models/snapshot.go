package models

import "time"

// ExtraSortOrder ranks extra activities after every scheduled one
const ExtraSortOrder = 99999

// DiarySummary is the part of a diary exposed to the panel
type DiarySummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CompletionView is one completion as shown in the panel log
type CompletionView struct {
	ID        string    `json:"id"`
	Value     int       `json:"value"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivityView is an activity resolved for one day
type ActivityView struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Icon          string           `json:"icon"`
	Points        int              `json:"points"`
	Type          ActivityType     `json:"type"`
	ScheduledTime string           `json:"scheduledTime,omitempty"`
	SortOrder     int              `json:"sortOrder"`
	IsExtra       bool             `json:"isExtra"`
	Completions   []CompletionView `json:"completions"`
	Value         int              `json:"value"`
	Count         int              `json:"count"`
	Status        CompletionStatus `json:"status,omitempty"`
}

// RoutineView is a routine with the activities applicable on one day.
// Complete is set once every binary activity in it has been marked.
type RoutineView struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	SortOrder  int            `json:"sortOrder"`
	Complete   bool           `json:"complete"`
	Progress   DayProgress    `json:"progress"`
	Activities []ActivityView `json:"activities"`
}

// DayProgress counts binary activities by status. Skipped and not-done entries are
// both reported so the consumer decides whether a skip counts as progress.
type DayProgress struct {
	Total   int `json:"total"`
	Marked  int `json:"marked"`
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
	NotDone int `json:"notDone"`
}

// Add counts one binary activity with the given status
func (p *DayProgress) Add(status CompletionStatus) {
	p.Total++
	switch status {
	case StatusDone:
		p.Done++
	case StatusSkipped:
		p.Skipped++
	case StatusNotDone:
		p.NotDone++
	default:
		return
	}
	p.Marked++
}

// Merge adds the counts of o to p
func (p *DayProgress) Merge(o DayProgress) {
	p.Total += o.Total
	p.Marked += o.Marked
	p.Done += o.Done
	p.Skipped += o.Skipped
	p.NotDone += o.NotDone
}

// DaySnapshot is everything the panel renders for a diary on one date
type DaySnapshot struct {
	Diary       DiarySummary  `json:"diary"`
	Date        string        `json:"date"`
	DayOfWeek   Weekday       `json:"dayOfWeek"`
	Routines    []RoutineView `json:"routines"`
	TotalPoints int           `json:"totalPoints"`
	Note        string        `json:"note"`
	Progress    DayProgress   `json:"progress"`
}

// FindActivity returns the resolved activity with id, if it is on the snapshot
func (s *DaySnapshot) FindActivity(id string) (ActivityView, bool) {
	for _, r := range s.Routines {
		for _, a := range r.Activities {
			if a.ID == id {
				return a, true
			}
		}
	}
	return ActivityView{}, false
}
