package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/stocklens/internal/mcpserver"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analysis tools over MCP on stdio",
	Long: `Serve the analysis pipeline as Model Context Protocol tools
on stdin/stdout.

Tools:
  get_quote           - Price snapshot with provenance
  get_ohlcv           - Daily price history
  get_technicals      - Technical indicator snapshot
  get_fundamentals    - Fundamentals and derived metrics
  get_news_sentiment  - Headlines and aggregated polarity
  analyze_stock       - Full pipeline with composite score
  stock_report        - Report plus narrative sections

The protocol owns stdout; logs go to stderr.

Example:
  go run ./cmd/stocklens mcp`,
	RunE: runMCPServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger (stderr only; stdout belongs to the protocol)
	log := logger.New(cfg)

	// 3. Wire the analysis pipeline
	p := buildPipeline(cfg, log)

	// 4. Serve on stdio until EOF
	srv := mcpserver.New(Version, p.router, p.calculator, p.metrics, p.assembler, p.narrative, log)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
