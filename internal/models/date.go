package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in storage and on the wire
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date anchored at 12:00 UTC, so that the
// weekday does not shift with the caller's timezone.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d.Add(12 * time.Hour), nil
}

// FormatDate formats t as a calendar date in t's own location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayOf returns the storage weekday of a calendar date
func WeekdayOf(date string) (Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return Weekday(t.Weekday()), nil
}

// AddDays shifts a calendar date by n days
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// Today returns the current calendar date in loc
func Today(now time.Time, loc *time.Location) string {
	return FormatDate(now.In(loc))
}
