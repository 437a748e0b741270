package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday is a day of the week in its storage encoding, Sunday=0 through Saturday=6.
// Display order is Monday first and is kept separate in DisplayOrder.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// AllWeekdays lists every weekday in storage order
var AllWeekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// DisplayOrder lists every weekday in the order board columns are shown
var DisplayOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayLabels = [...]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// Valid reports whether d is within Sunday..Saturday
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Label returns the short pt-BR name shown on column headers
func (d Weekday) Label() string {
	if !d.Valid() {
		return ""
	}
	return weekdayLabels[d]
}

// DisplayIndex returns the position of d in DisplayOrder
func (d Weekday) DisplayIndex() int {
	if !d.Valid() {
		return -1
	}
	return (int(d) + 6) % 7
}

// WeekdayAtDisplayIndex is the inverse of DisplayIndex
func WeekdayAtDisplayIndex(i int) (Weekday, error) {
	if i < 0 || i > 6 {
		return 0, fmt.Errorf("display index %d out of range", i)
	}
	return DisplayOrder[i], nil
}

func (d Weekday) String() string {
	return d.Label()
}

// ParseWeekday parses a storage-encoded weekday ("0".."6")
func ParseWeekday(s string) (Weekday, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	d := Weekday(n)
	if !d.Valid() {
		return 0, fmt.Errorf("weekday %d out of range", n)
	}
	return d, nil
}
