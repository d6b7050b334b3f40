package ports

import (
	"context"

	"github.com/aretw0/cinegraph/pkg/domain"
)

// CheckpointStore persists session checkpoints keyed by (thread, namespace, checkpoint).
// Implementations must deep-copy on both Save and Load and must make each Save atomic.
type CheckpointStore interface {
	// Save persists the checkpoint under cp.Key, replacing any previous one.
	Save(ctx context.Context, cp *domain.Checkpoint) error

	// Load retrieves the checkpoint for key.
	// Returns domain.ErrCheckpointNotFound if none exists.
	Load(ctx context.Context, key domain.CheckpointKey) (*domain.Checkpoint, error)

	// Delete removes the checkpoint for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key domain.CheckpointKey) error

	// List returns the keys of every stored checkpoint.
	List(ctx context.Context) ([]domain.CheckpointKey, error)
}
