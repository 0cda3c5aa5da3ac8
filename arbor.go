package arbor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor/internal/adapters/memory"
	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/nodes"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/storage"
)

// Version is the library version reported by the CLI.
const Version = "0.1.0"

// Workspace is the high-level entry point for the Arbor library. It
// ties a node factory to a snapshot store so graphs can be built,
// persisted, and deep-copied without wiring the packages by hand.
type Workspace struct {
	factory graph.Factory
	store   storage.SnapshotStore
	locker  storage.GraphLocker
	metrics *observability.Metrics
	logger  *slog.Logger
}

// lockTTL bounds how long a crashed process can hold a graph lock.
const lockTTL = 30 * time.Second

// Option defines a functional option for configuring the Workspace.
type Option func(*Workspace)

// WithFactory injects a custom node factory, bypassing the default
// registry with the built-in node set.
func WithFactory(f graph.Factory) Option {
	return func(w *Workspace) {
		w.factory = f
	}
}

// WithStore injects a snapshot store. The default is an in-memory store.
func WithStore(s storage.SnapshotStore) Option {
	return func(w *Workspace) {
		w.store = s
	}
}

// WithLocker enables cross-process locking around load-modify-save
// cycles. Without it, operations run unlocked.
func WithLocker(l storage.GraphLocker) Option {
	return func(w *Workspace) {
		w.locker = l
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithMetrics shares collectors with the rest of the application.
func WithMetrics(m *observability.Metrics) Option {
	return func(w *Workspace) {
		w.metrics = m
	}
}

// New initializes a Workspace. Without options it carries the built-in
// node registry, an in-memory store, and a discarding logger.
func New(opts ...Option) *Workspace {
	w := &Workspace{}
	for _, opt := range opts {
		opt(w)
	}
	if w.factory == nil {
		reg := registry.New()
		nodes.RegisterAll(reg)
		w.factory = reg
	}
	if w.store == nil {
		w.store = memory.New()
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if w.metrics == nil {
		w.metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	return w
}

// Factory returns the workspace's node factory.
func (w *Workspace) Factory() graph.Factory { return w.factory }

// Store returns the workspace's snapshot store.
func (w *Workspace) Store() storage.SnapshotStore { return w.store }

// Metrics returns the workspace's collectors.
func (w *Workspace) Metrics() *observability.Metrics { return w.metrics }

// NewGraph creates an empty graph backed by the workspace factory.
func (w *Workspace) NewGraph(opts ...graph.GraphOption) *graph.Graph {
	return graph.New(w.factory, opts...)
}

// SaveGraph snapshots the graph and persists it under the graph's ID.
func (w *Workspace) SaveGraph(ctx context.Context, g *graph.Graph) error {
	snap := g.Snapshot()
	err := w.store.Save(ctx, snap.ID, snap)
	w.metrics.ObserveStore("save", err)
	if err != nil {
		return fmt.Errorf("saving graph %s: %w", snap.ID, err)
	}
	w.logger.Info("graph saved", "id", snap.ID, "nodes", g.Len())
	return nil
}

// LoadGraph restores a stored graph by ID.
func (w *Workspace) LoadGraph(ctx context.Context, id string) (*graph.Graph, error) {
	snap, err := w.store.Load(ctx, id)
	w.metrics.ObserveStore("load", err)
	if err != nil {
		return nil, err
	}
	return graph.Restore(snap, w.factory)
}

// CopyGraph loads a stored graph, deep-copies it, and persists the copy
// under its own ID. The copy is returned; its ID names the new record.
func (w *Workspace) CopyGraph(ctx context.Context, id string) (*graph.Graph, error) {
	if w.locker != nil {
		unlock, err := w.locker.Lock(ctx, id, lockTTL)
		if err != nil {
			return nil, fmt.Errorf("locking graph %s: %w", id, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				w.logger.Warn("unlock failed", "id", id, "error", err)
			}
		}()
	}

	g, err := w.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	cp, err := g.Copy()
	if err != nil {
		return nil, fmt.Errorf("copying graph %s: %w", id, err)
	}
	w.metrics.ObserveCopy(start, cp.Len())
	if err := w.SaveGraph(ctx, cp); err != nil {
		return nil, err
	}
	w.logger.Info("graph copied", "id", id, "copy", cp.ID())
	return cp, nil
}

// DeleteGraph removes a stored graph. Unknown IDs delete cleanly.
func (w *Workspace) DeleteGraph(ctx context.Context, id string) error {
	err := w.store.Delete(ctx, id)
	w.metrics.ObserveStore("delete", err)
	return err
}

// ListGraphs returns the IDs of every stored graph.
func (w *Workspace) ListGraphs(ctx context.Context) ([]string, error) {
	ids, err := w.store.List(ctx)
	w.metrics.ObserveStore("list", err)
	return ids, err
}
