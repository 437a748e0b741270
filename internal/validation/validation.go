package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"queridodiario/internal/models"
)

var (
	emailRegex         = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	scheduledTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

const maxTextLength = 200

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a tenant or diary name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return ValidateLength("name", name)
}

// ValidateRequired rejects blank values
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return ValidateLength(field, value)
}

// ValidateLength rejects values longer than the text column limit
func ValidateLength(field, value string) error {
	if utf8.RuneCountInString(value) > maxTextLength {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, maxTextLength)}
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date
func ValidateDate(date string) error {
	if date == "" {
		return ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := models.ParseDate(date); err != nil {
		return ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return nil
}

// ValidateActivityType checks the activity type is binary or incremental
func ValidateActivityType(t models.ActivityType) error {
	if !t.Valid() {
		return ValidationError{Field: "type", Message: "type must be binary or incremental"}
	}
	return nil
}

// ValidateDays requires at least one weekday, each within Sunday..Saturday
func ValidateDays(days []models.Weekday) error {
	if len(days) == 0 {
		return ValidationError{Field: "days", Message: "select at least one day"}
	}
	for _, d := range days {
		if !d.Valid() {
			return ValidationError{Field: "days", Message: fmt.Sprintf("invalid weekday %d", int(d))}
		}
	}
	return nil
}

// ValidateScheduledTime accepts an empty value or a 24h HH:MM time
func ValidateScheduledTime(s string) error {
	if s == "" || scheduledTimeRegex.MatchString(s) {
		return nil
	}
	return ValidationError{Field: "scheduledTime", Message: "time must be HH:MM"}
}

// ValidatePlan checks the plan tier is known
func ValidatePlan(plan string) error {
	if !models.ValidPlan(plan) {
		return ValidationError{Field: "plan", Message: fmt.Sprintf("plan must be %s or %s", models.PlanFree, models.PlanPro)}
	}
	return nil
}
