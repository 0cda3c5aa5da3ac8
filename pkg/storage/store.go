// Package storage defines the persistence port for graph snapshots and
// the contract every adapter must satisfy.
package storage

import (
	"context"
	"errors"

	"github.com/aretw0/arbor/pkg/graph"
)

// ErrGraphNotFound is returned when loading or deleting an unknown graph.
var ErrGraphNotFound = errors.New("graph not found")

// SnapshotStore persists graph snapshots keyed by graph ID. Adapters
// live in internal/adapters; all of them must pass
// RunSnapshotStoreContract.
type SnapshotStore interface {
	// Save persists the snapshot under the given ID, overwriting any
	// previous version.
	Save(ctx context.Context, id string, snap *graph.Snapshot) error

	// Load retrieves the snapshot stored under the given ID.
	// Returns ErrGraphNotFound if no such graph exists.
	Load(ctx context.Context, id string) (*graph.Snapshot, error)

	// Delete removes the snapshot. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of every stored graph.
	List(ctx context.Context) ([]string, error)
}
