// Package idgen generates completion record IDs.
package idgen

import (
	"github.com/google/uuid"

	"github.com/runoshun/habit/internal/domain"
)

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// Ensure UUID implements domain.IDGenerator.
var _ domain.IDGenerator = UUID{}

// NewID returns a new random UUID string.
func (UUID) NewID() string {
	return uuid.NewString()
}
