// Package memory provides an in-memory storage.SnapshotStore, used for
// tests and as the default when no persistence is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/storage"
)

// Store implements storage.SnapshotStore on a mutex-guarded map.
// Snapshots are stored as serialized JSON so callers cannot mutate a
// stored snapshot through a retained pointer.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Save persists the snapshot under the given ID.
func (s *Store) Save(ctx context.Context, id string, snap *graph.Snapshot) error {
	if id == "" {
		return fmt.Errorf("graph ID cannot be empty")
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = raw
	return nil
}

// Load retrieves the snapshot stored under the given ID.
func (s *Store) Load(ctx context.Context, id string) (*graph.Snapshot, error) {
	s.mu.RLock()
	raw, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrGraphNotFound
	}
	var snap graph.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the IDs of every stored graph.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
