package handlers

import (
	"time"

	"queridodiario/internal/models"
)

// TenantView is the tenant as exposed to the admin UI, without credentials
type TenantView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Plan  string `json:"plan"`
}

// NewTenantView builds the public view of a tenant
func NewTenantView(t *models.Tenant) TenantView {
	return TenantView{ID: t.ID, Email: t.Email, Name: t.Name, Plan: t.Plan}
}

// SessionView is returned after sign-in. The CSRF token must be echoed in the
// X-CSRF-Token header of every admin mutation.
type SessionView struct {
	Tenant    TenantView `json:"tenant"`
	CSRFToken string     `json:"csrfToken"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// DiaryView is a diary with its shareable panel link
type DiaryView struct {
	models.Diary
	PanelURL string `json:"panelUrl"`
}

type diaryRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type routineRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type moveRoutineRequest struct {
	Direction string `json:"direction"`
}

type activityRequest struct {
	Title         string              `json:"title"`
	Icon          string              `json:"icon"`
	Points        int                 `json:"points"`
	Type          models.ActivityType `json:"type"`
	ScheduledTime string              `json:"scheduledTime"`
	Days          []models.Weekday    `json:"days"`
}

type reorderRequest struct {
	ActivityIDs []string `json:"activityIds"`
}

type moveActivityRequest struct {
	Source models.Weekday `json:"source"`
	Dest   models.Weekday `json:"dest"`
	From   int            `json:"from"`
	To     int            `json:"to"`
}

type shareRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type noteRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}
