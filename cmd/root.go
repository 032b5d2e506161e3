// Package cmd provides the command-line interface for cachesim.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "cachesim",
	Short: "Cachesim estimates AMAT and MPKI of multi-level cache " +
		"hierarchies under synthetic workloads.",
	Long: `Cachesim replays synthetic access traces through a configurable ` +
		`multi-level set-associative cache hierarchy and records per-access ` +
		`events and per-run metrics. It supports LRU, FIFO, and Belady (OPT) ` +
		`replacement policies and one-dimensional parameter sweeps.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Flag defaults can be provided through a .env file.
	_ = godotenv.Load()
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
