package testrun

import (
	"context"

	"github.com/google/uuid"
)

// Store persists runs together with their agent results.
type Store interface {
	// Create stores the run and all of its results atomically.
	Create(ctx context.Context, run *Run) error

	// GetByID returns a run with its results in run order.
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// List returns runs newest first, without results.
	List(ctx context.Context, limit, offset int) ([]*Run, error)

	// Count returns the number of stored runs.
	Count(ctx context.Context) (int, error)
}
