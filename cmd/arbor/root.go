package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor is a node-graph engine with pull evaluation and deep copy",
	Long:  `Arbor manages graphs of typed nodes: build them from YAML documents, persist snapshots, deep-copy them with positional correspondence, and pull values on demand.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("store", "memory", "Snapshot store backend: memory, file, or redis")
	rootCmd.PersistentFlags().String("dir", ".arbor/graphs", "Directory backing the file store")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Address of the Redis backend")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}
