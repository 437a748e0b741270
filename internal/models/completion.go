package models

import "time"

// Completion records a mark of an activity on a date. BinarySlot is 0 for binary
// activities and nil for incremental ones, so the unique key admits one binary row
// per (activity, diary, date) and any number of incremental rows.
type Completion struct {
	ID         string    `db:"id" json:"id"`
	ActivityID string    `db:"activity_id" json:"activityId"`
	DiaryID    string    `db:"diary_id" json:"diaryId"`
	Date       string    `db:"date" json:"date"`
	Value      int       `db:"value" json:"value"`
	Comment    *string   `db:"comment" json:"comment"`
	BinarySlot *int      `db:"binary_slot" json:"binarySlot,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// DayNote is the freeform note of a diary for one date
type DayNote struct {
	ID        string    `db:"id" json:"id"`
	DiaryID   string    `db:"diary_id" json:"diaryId"`
	Date      string    `db:"date" json:"date"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ExtraActivity is a one-off activity that only exists on Date. Its single
// completion lives on the row itself.
type ExtraActivity struct {
	ID              string    `db:"id" json:"id"`
	DiaryID         string    `db:"diary_id" json:"diaryId"`
	RoutineID       string    `db:"routine_id" json:"routineId"`
	Date            string    `db:"date" json:"date"`
	Title           string    `db:"title" json:"title"`
	Points          int       `db:"points" json:"points"`
	Icon            string    `db:"icon" json:"icon"`
	CompletionValue *int      `db:"completion_value" json:"completionValue"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// CompletionStatus is the daily state of a binary activity
type CompletionStatus string

const (
	StatusPending CompletionStatus = "pending"
	StatusDone    CompletionStatus = "done"
	StatusSkipped CompletionStatus = "skipped"
	StatusNotDone CompletionStatus = "not_done"
)

// StatusForValue maps a recorded binary value to its status
func StatusForValue(value int) CompletionStatus {
	switch {
	case value > 0:
		return StatusDone
	case value < 0:
		return StatusNotDone
	default:
		return StatusSkipped
	}
}

// BinaryStatus derives the status of a binary activity from the day's completion values.
// The last value wins if more than one is present.
func BinaryStatus(values []int) CompletionStatus {
	if len(values) == 0 {
		return StatusPending
	}
	return StatusForValue(values[len(values)-1])
}
