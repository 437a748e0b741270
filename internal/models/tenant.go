package models

import "time"

// Plan tiers a tenant can be on
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Tenant represents an administrator account that owns diaries
type Tenant struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"passwordHash"`
	Name         string    `db:"name" json:"name"`
	Plan         string    `db:"plan" json:"plan"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// ValidPlan reports whether plan is a known tier
func ValidPlan(plan string) bool {
	return plan == PlanFree || plan == PlanPro
}
