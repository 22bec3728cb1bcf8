package commands

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stocklens",
	Short: "StockLens - deterministic stock analysis pipeline",
	Long: `StockLens Unified CLI

Multi-vendor market data with sequential fallback and provenance,
deterministic indicators, fundamental metrics and a weighted
composite score.

Usage:
  go run ./cmd/stocklens [command]

Examples:
  go run ./cmd/stocklens analyze AAPL
  go run ./cmd/stocklens api
  go run ./cmd/stocklens mcp
  go run ./cmd/stocklens watch`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
