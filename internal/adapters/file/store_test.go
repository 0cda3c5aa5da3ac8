package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/pkg/graph"
	"github.com/aretw0/arbor/pkg/storage"
)

func TestFileStore_Contract(t *testing.T) {
	storage.RunSnapshotStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)

	err := store.Save(context.Background(), "g1", &graph.Snapshot{ID: "g1"})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "g1.json", entries[0].Name())
}

func TestFileStore_RejectsEmptyID(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", &graph.Snapshot{}))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileStore_DefaultBasePath(t *testing.T) {
	store := file.New("")
	assert.Equal(t, filepath.Join(".arbor", "graphs"), store.BasePath)
}
