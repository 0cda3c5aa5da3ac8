package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/storage"
)

type loggingMiddleware struct {
	next   storage.SnapshotStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store operation with its duration and
// outcome.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next storage.SnapshotStore) storage.SnapshotStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) Save(ctx context.Context, id string, snap *graph.Snapshot) error {
	start := time.Now()
	err := m.next.Save(ctx, id, snap)
	m.log(ctx, "save", id, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, id string) (*graph.Snapshot, error) {
	start := time.Now()
	snap, err := m.next.Load(ctx, id)
	m.log(ctx, "load", id, start, err)
	return snap, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.log(ctx, "delete", id, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.log(ctx, "list", "", start, err)
	return ids, err
}

func (m *loggingMiddleware) log(ctx context.Context, op, id string, start time.Time, err error) {
	args := []any{"op", op, "duration", time.Since(start)}
	if id != "" {
		args = append(args, "id", id)
	}
	if err != nil {
		args = append(args, "error", err)
		m.logger.WarnContext(ctx, "store operation failed", args...)
		return
	}
	m.logger.DebugContext(ctx, "store operation", args...)
}

type metricsMiddleware struct {
	next    storage.SnapshotStore
	metrics *observability.Metrics
}

// NewMetricsMiddleware counts store operations by outcome on the shared
// collectors.
func NewMetricsMiddleware(metrics *observability.Metrics) Middleware {
	return func(next storage.SnapshotStore) storage.SnapshotStore {
		return &metricsMiddleware{next: next, metrics: metrics}
	}
}

func (m *metricsMiddleware) Save(ctx context.Context, id string, snap *graph.Snapshot) error {
	err := m.next.Save(ctx, id, snap)
	m.metrics.ObserveStore("save", err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, id string) (*graph.Snapshot, error) {
	snap, err := m.next.Load(ctx, id)
	m.metrics.ObserveStore("load", err)
	return snap, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, id string) error {
	err := m.next.Delete(ctx, id)
	m.metrics.ObserveStore("delete", err)
	return err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]string, error) {
	ids, err := m.next.List(ctx)
	m.metrics.ObserveStore("list", err)
	return ids, err
}
