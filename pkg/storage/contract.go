package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/graph"
)

// RunSnapshotStoreContract verifies that a SnapshotStore implementation
// adheres to the interface contract. Every adapter's test suite invokes
// it against a real instance.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	id := "contract-test-graph-" + time.Now().Format("20060102150405")

	sample := func(graphID string) *graph.Snapshot {
		return &graph.Snapshot{
			ID:   graphID,
			Mode: "design",
			Nodes: []*graph.NodeSnapshot{
				{ID: "n0", Type: "const", Params: map[string]any{"value": "x", "type": "string"}},
				nil, // tombstone
				{ID: "n2", Type: "sum"},
			},
			BoundaryPorts: []graph.PortSpec{
				{Field: "out", Direction: "output", Type: "float"},
			},
			PortMap: graph.PortMapSnapshot{
				Keys:   []graph.PortDescriptor{{Node: -1, Field: "out", Direction: "output", Type: "float"}},
				Values: []graph.PortDescriptor{{Node: 2, Field: "sum", Direction: "output", Type: "float"}},
			},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := sample(id)
		require.NoError(t, store.Save(ctx, id, snap))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, snap.ID, loaded.ID)
		assert.Equal(t, snap.Mode, loaded.Mode)
		require.Len(t, loaded.Nodes, 3)
		assert.Nil(t, loaded.Nodes[1], "tombstones must survive persistence")
		assert.Equal(t, "const", loaded.Nodes[0].Type)
		assert.Len(t, loaded.PortMap.Keys, 1)
		assert.Len(t, loaded.PortMap.Values, 1)
		assert.Equal(t, "sum", loaded.PortMap.Values[0].Field)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		snap := sample(id)
		snap.Mode = "live"
		require.NoError(t, store.Save(ctx, id, snap))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "live", loaded.Mode)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, ErrGraphNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, id, sample(id)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, ErrGraphNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting an unknown ID is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, id1, sample(id1)))
		require.NoError(t, store.Save(ctx, id2, sample(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
