package models

import "time"

// ActivityType distinguishes once-per-day activities from repeatable counters
type ActivityType string

const (
	// ActivityBinary has at most one completion per day
	ActivityBinary ActivityType = "binary"
	// ActivityIncremental appends a completion on every tap
	ActivityIncremental ActivityType = "incremental"
)

// Valid reports whether t is a known activity type
func (t ActivityType) Valid() bool {
	return t == ActivityBinary || t == ActivityIncremental
}

// Activity is a trackable behavior belonging to a routine
type Activity struct {
	ID            string       `db:"id" json:"id"`
	RoutineID     string       `db:"routine_id" json:"routineId"`
	Title         string       `db:"title" json:"title"`
	Icon          string       `db:"icon" json:"icon"`
	Points        int          `db:"points" json:"points"`
	Type          ActivityType `db:"type" json:"type"`
	ScheduledTime string       `db:"scheduled_time" json:"scheduledTime"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

// ActivityDay places an activity in one weekday column at a position
type ActivityDay struct {
	ActivityID string  `db:"activity_id" json:"activityId"`
	DayOfWeek  Weekday `db:"day_of_week" json:"dayOfWeek"`
	SortOrder  int     `db:"sort_order" json:"sortOrder"`
}

// ActivityWithDays is an activity together with every weekday it is scheduled on
type ActivityWithDays struct {
	Activity
	Days []ActivityDay `json:"days"`
}

// HasDay reports whether the activity is scheduled on day
func (a *ActivityWithDays) HasDay(day Weekday) bool {
	_, ok := a.DayFor(day)
	return ok
}

// DayFor returns the activity's row for day
func (a *ActivityWithDays) DayFor(day Weekday) (ActivityDay, bool) {
	for _, d := range a.Days {
		if d.DayOfWeek == day {
			return d, true
		}
	}
	return ActivityDay{}, false
}

// Weekdays lists the scheduled days in storage order
func (a *ActivityWithDays) Weekdays() []Weekday {
	days := make([]Weekday, 0, len(a.Days))
	for _, wd := range AllWeekdays {
		if a.HasDay(wd) {
			days = append(days, wd)
		}
	}
	return days
}
