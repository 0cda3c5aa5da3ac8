package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/adapters/memory"
	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/storage"
	"github.com/aretw0/arbor/pkg/storage/middleware"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sampleSnapshot() *graph.Snapshot {
	return &graph.Snapshot{
		ID:   "secret-graph",
		Mode: "design",
		Nodes: []*graph.NodeSnapshot{
			{ID: "n1", Type: "const", Params: map[string]any{"value": "classified", "type": "string"}},
		},
	}
}

func TestEncryptionMiddleware_RoundTrip(t *testing.T) {
	ctx := context.Background()
	key := generateKey(t)
	inner := memory.New()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(inner)

	snap := sampleSnapshot()
	require.NoError(t, store.Save(ctx, snap.ID, snap))

	t.Run("record at rest is opaque", func(t *testing.T) {
		raw, err := inner.Load(ctx, snap.ID)
		require.NoError(t, err)
		require.Len(t, raw.Nodes, 1)
		assert.Equal(t, "encrypted", raw.Nodes[0].Type)
		assert.NotContains(t, raw.Nodes[0].Params, "value")
	})

	t.Run("load decrypts", func(t *testing.T) {
		loaded, err := store.Load(ctx, snap.ID)
		require.NoError(t, err)
		assert.Equal(t, snap.ID, loaded.ID)
		require.Len(t, loaded.Nodes, 1)
		assert.Equal(t, "const", loaded.Nodes[0].Type)
		assert.Equal(t, "classified", loaded.Nodes[0].Params["value"])
	})
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	inner := memory.New()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(inner)
	snap := sampleSnapshot()
	require.NoError(t, oldStore.Save(ctx, snap.ID, snap))

	t.Run("fallback key decrypts old records", func(t *testing.T) {
		rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    newKey,
			FallbackKeys: [][]byte{oldKey},
		})(inner)

		loaded, err := rotated.Load(ctx, snap.ID)
		require.NoError(t, err)
		assert.Equal(t, snap.ID, loaded.ID)
	})

	t.Run("without fallback the load fails", func(t *testing.T) {
		strict := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(inner)

		_, err := strict.Load(ctx, snap.ID)
		assert.ErrorContains(t, err, "decrypt")
	})
}

func TestEncryptionMiddleware_RejectsPlainRecords(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	snap := sampleSnapshot()
	require.NoError(t, inner.Save(ctx, snap.ID, snap))

	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(inner)
	_, err := store.Load(ctx, snap.ID)
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryptionMiddleware_RequiresAES256Key(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}

// The full decorator chain must still behave like a plain store.
func TestChain_SatisfiesStoreContract(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	store := middleware.Chain(memory.New(),
		middleware.NewLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))),
		middleware.NewMetricsMiddleware(metrics),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)
	storage.RunSnapshotStoreContract(t, store)
}
