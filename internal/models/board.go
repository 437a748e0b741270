package models

// BoardCard is an activity placed in one weekday column
type BoardCard struct {
	Activity
	SortOrder int `json:"sortOrder"`
}

// BoardColumn holds a routine's activities scheduled on one weekday, in column order
type BoardColumn struct {
	Day        Weekday     `json:"day"`
	Label      string      `json:"label"`
	Activities []BoardCard `json:"activities"`
}

// Board is the weekday Kanban of a routine, columns in DisplayOrder
type Board struct {
	Routine Routine       `json:"routine"`
	Columns []BoardColumn `json:"columns"`
}

// Column returns the column for day
func (b *Board) Column(day Weekday) (BoardColumn, bool) {
	for _, c := range b.Columns {
		if c.Day == day {
			return c, true
		}
	}
	return BoardColumn{}, false
}

// IDs returns the activity IDs of the column in order
func (c BoardColumn) IDs() []string {
	ids := make([]string, len(c.Activities))
	for i, a := range c.Activities {
		ids[i] = a.ID
	}
	return ids
}
