package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for a missing or unknown access token or session
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is wrapped by every "entity absent or not owned by the caller" error
	ErrNotFound = errors.New("not found")

	ErrTenantNotFound   = fmt.Errorf("tenant %w", ErrNotFound)
	ErrDiaryNotFound    = fmt.Errorf("diary %w", ErrNotFound)
	ErrRoutineNotFound  = fmt.Errorf("routine %w", ErrNotFound)
	ErrActivityNotFound = fmt.Errorf("activity %w", ErrNotFound)
	ErrExtraNotFound    = fmt.Errorf("extra activity %w", ErrNotFound)
)
