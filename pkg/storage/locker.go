package storage

import (
	"context"
	"time"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// GraphLocker coordinates exclusive access to a stored graph. Graphs are
// not safe for concurrent mutation, so hosts that share a store across
// processes must hold the graph's lock for the whole load-modify-save
// cycle.
type GraphLocker interface {
	// Lock acquires the lock for the given graph ID, blocking until it
	// is acquired or the context is canceled. The returned UnlockFunc
	// MUST be called to release the lock.
	Lock(ctx context.Context, id string, ttl time.Duration) (UnlockFunc, error)
}
