package ports

import (
	"context"

	"github.com/aretw0/authflow/pkg/domain"
)

// RunStore defines the interface for persisting run snapshots.
// This allows a simulation to be stopped and resumed later, possibly by another process.
type RunStore interface {
	// Save persists the run under run.ID, replacing any previous snapshot.
	Save(ctx context.Context, run *domain.Run) error

	// Load retrieves the run for a given ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Run, error)

	// Delete removes the run for a given ID. Deleting a missing run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of every stored run.
	List(ctx context.Context) ([]string, error)
}
