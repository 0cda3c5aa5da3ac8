// Package middleware provides composable decorators for snapshot
// stores: request logging, metrics, and at-rest encryption.
package middleware

import "github.com/aretw0/arbor/pkg/storage"

// Middleware allows wrapping a SnapshotStore to add behavior.
type Middleware func(storage.SnapshotStore) storage.SnapshotStore

// Chain applies middlewares so the first listed is outermost.
func Chain(store storage.SnapshotStore, mws ...Middleware) storage.SnapshotStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
