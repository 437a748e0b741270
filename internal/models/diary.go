package models

import "time"

// Defaults applied when the administrator leaves a glyph empty
const (
	DefaultDiaryAvatar  = "📒"
	DefaultRoutineIcon  = "📋"
	DefaultActivityIcon = "📌"
)

// Diary is a tracked profile. Anyone holding AccessToken can use its panel.
type Diary struct {
	ID          string    `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"tenantId"`
	Name        string    `db:"name" json:"name"`
	Avatar      string    `db:"avatar" json:"avatar"`
	AccessToken string    `db:"access_token" json:"accessToken"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Routine is an ordered group of activities inside a diary
type Routine struct {
	ID        string    `db:"id" json:"id"`
	DiaryID   string    `db:"diary_id" json:"diaryId"`
	Name      string    `db:"name" json:"name"`
	Icon      string    `db:"icon" json:"icon"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// DefaultRoutine describes a routine seeded into every new diary
type DefaultRoutine struct {
	Name string
	Icon string
}

// DefaultRoutines are created, in order, when a diary is created
var DefaultRoutines = []DefaultRoutine{
	{Name: "Manhã", Icon: "☀️"},
	{Name: "Tarde", Icon: "🌤️"},
	{Name: "Noite", Icon: "🌙"},
}
