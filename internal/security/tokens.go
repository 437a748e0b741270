package security

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random identifier for a new row
func NewID() string {
	return uuid.NewString()
}

// NewAccessToken returns an unguessable diary capability token
func NewAccessToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
