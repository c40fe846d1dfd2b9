package common

import (
	"github.com/google/uuid"
)

// NewCorrelationID generates a fresh v4 UUID for a BuildJob. Regenerated on
// every replay of a job (§5 "Cancellation/timeout") — downstream consumers must
// tolerate duplicate build jobs rather than rely on a stable ID.
func NewCorrelationID() string {
	return uuid.New().String()
}
