package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stocklens/internal/watch"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze a watchlist on a schedule",
	Long: `Re-analyze the configured watchlist on a cron schedule and
print each update as a JSON line.

The watchlist comes from WATCH_SYMBOLS and the schedule from
WATCH_SCHEDULE (default "@every 15m"); the --symbols flag overrides
the list for this run.

Example:
  go run ./cmd/stocklens watch
  go run ./cmd/stocklens watch --symbols AAPL,MSFT,NVDA`,
	RunE: runWatch,
}

var watchSymbols []string

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchSymbols, "symbols", nil, "symbols to watch (overrides WATCH_SYMBOLS)")
}

// stdoutSink prints watchlist updates as JSON lines.
type stdoutSink struct{}

func (stdoutSink) Broadcast(message []byte) {
	fmt.Println(string(message))
}

func runWatch(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	symbols := cfg.Watch.Symbols
	if len(watchSymbols) > 0 {
		symbols = watchSymbols
	}
	for i, symbol := range symbols {
		symbols[i] = strings.ToUpper(strings.TrimSpace(symbol))
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no watchlist configured (set WATCH_SYMBOLS or pass --symbols)")
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Wire the analysis pipeline
	p := buildPipeline(cfg, log)

	// 4. Run the schedule until interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := watch.NewWatcher(p.assembler, stdoutSink{}, symbols, cfg.Watch.Schedule, log)
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watchlist schedule: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	cancel()
	watcher.Stop()
	log.Info("Watch stopped")
	return nil
}
