// Package cli holds the shared wiring between cobra commands: flag
// driven workspace construction and signal-aware contexts.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/internal/adapters/memory"
	"github.com/aretw0/arbor/internal/adapters/redis"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/storage"
)

// NewWorkspace builds an arbor.Workspace from the command's persistent
// flags: --store selects the backend, --dir and --redis-addr configure it.
func NewWorkspace(cmd *cobra.Command) (*arbor.Workspace, error) {
	store, err := newStore(cmd)
	if err != nil {
		return nil, err
	}
	return arbor.New(
		arbor.WithStore(store),
		arbor.WithLogger(NewLogger(cmd)),
	), nil
}

// NewLogger configures the command logger. Debug mode writes to stderr
// so log lines stay out of the command's stdout output.
func NewLogger(cmd *cobra.Command) *slog.Logger {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

func newStore(cmd *cobra.Command) (storage.SnapshotStore, error) {
	kind, _ := cmd.Flags().GetString("store")
	switch kind {
	case "", "memory":
		return memory.New(), nil
	case "file":
		dir, _ := cmd.Flags().GetString("dir")
		return file.New(dir), nil
	case "redis":
		addr, _ := cmd.Flags().GetString("redis-addr")
		return redis.New(addr, "", 0), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected memory, file, or redis)", kind)
	}
}
