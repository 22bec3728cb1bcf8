package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stocklens/internal/api"
	"github.com/wonny/stocklens/internal/api/handlers"
	"github.com/wonny/stocklens/internal/watch"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the REST API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                - Health check
  GET  /api/quote/{symbol}    - Price snapshot with provenance
  GET  /api/report/{symbol}   - Full analysis report
  GET  /api/providers         - Fallback chain per data kind
  GET  /ws/signals            - Watchlist signal stream (websocket)

Example:
  go run ./cmd/stocklens api
  go run ./cmd/stocklens api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== StockLens API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Wire the analysis pipeline
	p := buildPipeline(cfg, log)

	// 4. Start the signal hub; the watcher itself is optional and only
	// runs when a watchlist is configured
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()

	hub := watch.NewHub(log)
	go hub.Run(hubCtx)

	if len(cfg.Watch.Symbols) > 0 {
		watcher := watch.NewWatcher(p.assembler, hub, cfg.Watch.Symbols, cfg.Watch.Schedule, log)
		if err := watcher.Start(hubCtx); err != nil {
			return fmt.Errorf("start watchlist schedule: %w", err)
		}
		defer watcher.Stop()
	}

	// 5. Create handler, router, server
	reportHandler := handlers.NewReportHandler(p.router, p.assembler, p.narrative, log)
	router := api.NewRouter(reportHandler, hub, log)
	server := api.New(cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/quote/{symbol}")
	fmt.Println("  GET  /api/report/{symbol}")
	fmt.Println("  GET  /api/providers")
	fmt.Println("  GET  /ws/signals")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
