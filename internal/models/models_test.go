package models

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayStorageEncoding(t *testing.T) {
	tests := []struct {
		day   Weekday
		value int
		label string
	}{
		{Sunday, 0, "Dom"},
		{Monday, 1, "Seg"},
		{Tuesday, 2, "Ter"},
		{Wednesday, 3, "Qua"},
		{Thursday, 4, "Qui"},
		{Friday, 5, "Sex"},
		{Saturday, 6, "Sáb"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.value, int(tt.day))
			assert.Equal(t, tt.label, tt.day.Label())
			assert.Equal(t, time.Weekday(tt.value), time.Weekday(tt.day))

			parsed, err := ParseWeekday(strconv.Itoa(tt.value))
			require.NoError(t, err)
			assert.Equal(t, tt.day, parsed)
		})
	}

	for _, bad := range []string{"7", "-1", "seg", ""} {
		_, err := ParseWeekday(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "", Weekday(9).Label())
}

func TestWeekdayDisplayOrder(t *testing.T) {
	assert.Equal(t, []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}, DisplayOrder)

	expected := map[Weekday]int{
		Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5, Sunday: 6,
	}
	for day, idx := range expected {
		assert.Equal(t, idx, day.DisplayIndex(), day.Label())

		back, err := WeekdayAtDisplayIndex(idx)
		require.NoError(t, err)
		assert.Equal(t, day, back)
	}

	_, err := WeekdayAtDisplayIndex(7)
	assert.Error(t, err)
	assert.Equal(t, -1, Weekday(7).DisplayIndex())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "2024-3-1", "01/03/2024", "2024-02-30"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date string
		want Weekday
	}{
		{"2024-03-01", Friday},
		{"2024-03-03", Sunday},
		{"2024-03-04", Monday},
		{"2023-12-31", Sunday},
		{"2024-02-29", Thursday},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := WeekdayOf(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddDays(t *testing.T) {
	next, err := AddDays("2024-02-28", 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", next)

	prev, err := AddDays("2024-01-01", -1)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", prev)

	_, err = AddDays("nope", 1)
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	// 01:30 UTC is still the previous day in São Paulo
	now := time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC)
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	assert.Equal(t, "2024-03-02", Today(now, time.UTC))
	assert.Equal(t, "2024-03-01", Today(now, saoPaulo))
}

func TestMoveWithin(t *testing.T) {
	ids := []string{"a1", "a2", "a3"}

	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"last to first", 2, 0, []string{"a3", "a1", "a2"}},
		{"first to last", 0, 2, []string{"a2", "a3", "a1"}},
		{"adjacent", 0, 1, []string{"a2", "a1", "a3"}},
		{"same index", 1, 1, []string{"a1", "a2", "a3"}},
		{"out of range", 0, 5, []string{"a1", "a2", "a3"}},
		{"negative", -1, 0, []string{"a1", "a2", "a3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MoveWithin(ids, tt.from, tt.to))
		})
	}

	assert.Equal(t, []string{"a1", "a2", "a3"}, ids, "input must not be mutated")
}

func TestBinaryStatus(t *testing.T) {
	assert.Equal(t, StatusPending, BinaryStatus(nil))
	assert.Equal(t, StatusDone, BinaryStatus([]int{10}))
	assert.Equal(t, StatusSkipped, BinaryStatus([]int{0}))
	assert.Equal(t, StatusNotDone, BinaryStatus([]int{-10}))
	assert.Equal(t, StatusSkipped, BinaryStatus([]int{10, 0}))
}

func TestActivityTypeValid(t *testing.T) {
	assert.True(t, ActivityBinary.Valid())
	assert.True(t, ActivityIncremental.Valid())
	assert.False(t, ActivityType("counter").Valid())
	assert.False(t, ActivityType("").Valid())
}

func TestActivityWithDays(t *testing.T) {
	a := ActivityWithDays{
		Activity: Activity{ID: "a1"},
		Days: []ActivityDay{
			{ActivityID: "a1", DayOfWeek: Saturday, SortOrder: 2},
			{ActivityID: "a1", DayOfWeek: Monday, SortOrder: 0},
		},
	}

	assert.True(t, a.HasDay(Monday))
	assert.False(t, a.HasDay(Sunday))

	day, ok := a.DayFor(Saturday)
	require.True(t, ok)
	assert.Equal(t, 2, day.SortOrder)

	assert.Equal(t, []Weekday{Monday, Saturday}, a.Weekdays())
}

func TestSnapshotFindActivity(t *testing.T) {
	s := DaySnapshot{Routines: []RoutineView{
		{ID: "r1", Activities: []ActivityView{{ID: "a1"}}},
		{ID: "r2", Activities: []ActivityView{{ID: "a2", IsExtra: true}}},
	}}

	a, ok := s.FindActivity("a2")
	require.True(t, ok)
	assert.True(t, a.IsExtra)

	_, ok = s.FindActivity("missing")
	assert.False(t, ok)
}

func TestValidPlan(t *testing.T) {
	assert.True(t, ValidPlan(PlanFree))
	assert.True(t, ValidPlan(PlanPro))
	assert.False(t, ValidPlan("enterprise"))
}
