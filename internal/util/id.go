package util

import "github.com/google/uuid"

// NewID returns a random opaque record id.
func NewID() string {
	return uuid.NewString()
}
