package watch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/internal/report"
	"github.com/wonny/stocklens/pkg/logger"
)

// Per-symbol budget inside one sweep; a stuck provider must not eat
// the whole schedule slot.
const symbolTimeout = 2 * time.Minute

// Update is one broadcast watchlist entry. Scored distinguishes a
// computed score from the zero values of a failed analysis; consumers
// must not read Score or Signal when it is false.
type Update struct {
	Symbol      string                `json:"symbol"`
	GeneratedAt time.Time             `json:"generated_at"`
	Scored      bool                  `json:"scored"`
	Price       float64               `json:"price"`
	Score       float64               `json:"score"`
	Signal      contracts.SignalLabel `json:"signal,omitempty"`
	Confidence  float64               `json:"confidence"`
	Warnings    []string              `json:"warnings,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Broadcaster receives serialized watchlist updates. The websocket
// hub is the usual sink; the CLI uses a stdout writer instead.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Watcher re-analyzes a fixed watchlist on a cron schedule and pushes
// each result to the broadcaster. SSOT: scheduled re-analysis lives
// here only.
type Watcher struct {
	cron      *cron.Cron
	assembler *report.Assembler
	sink      Broadcaster
	symbols   []string
	schedule  string
	logger    *logger.Logger
}

// NewWatcher creates a watcher over a symbol list and cron schedule.
func NewWatcher(assembler *report.Assembler, sink Broadcaster, symbols []string, schedule string, log *logger.Logger) *Watcher {
	return &Watcher{
		cron:      cron.New(),
		assembler: assembler,
		sink:      sink,
		symbols:   symbols,
		schedule:  schedule,
		logger:    log,
	}
}

// Start registers the schedule and runs one immediate sweep so new
// subscribers are not left waiting a full interval for first data.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() { w.sweep(ctx) }); err != nil {
		return err
	}
	w.cron.Start()

	w.logger.WithFields(map[string]interface{}{
		"symbols":  w.symbols,
		"schedule": w.schedule,
	}).Info("Watchlist schedule started")

	go w.sweep(ctx)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *Watcher) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.logger.Info("Watchlist schedule stopped")
}

// sweep analyzes every watched symbol sequentially. Sequential on
// purpose: the sweep shares provider rate budgets with interactive
// requests and must stay a background citizen.
func (w *Watcher) sweep(ctx context.Context) {
	started := time.Now()
	for _, symbol := range w.symbols {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.analyzeAndBroadcast(ctx, symbol)
	}

	w.logger.WithFields(map[string]interface{}{
		"symbols":     len(w.symbols),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Watchlist sweep completed")
}

func (w *Watcher) analyzeAndBroadcast(ctx context.Context, symbol string) {
	symbolCtx, cancel := context.WithTimeout(ctx, symbolTimeout)
	defer cancel()

	update := Update{Symbol: symbol, GeneratedAt: time.Now().UTC()}

	rpt, err := w.assembler.Assemble(symbolCtx, symbol, report.Options{
		Sections: []string{report.SectionQuote, report.SectionScore},
	})
	switch {
	case err != nil:
		w.logger.WithError(err).WithField("symbol", symbol).Warn("Watchlist analysis failed")
		update.Error = err.Error()
	default:
		if rpt.Quote != nil {
			update.Price = rpt.Quote.Price
		}
		if rpt.Score != nil {
			update.Scored = true
			update.Score = rpt.Score.Score
			update.Signal = rpt.Score.Signal
			update.Confidence = rpt.Score.Confidence
		}
		update.Warnings = rpt.Warnings
	}

	payload, err := json.Marshal(update)
	if err != nil {
		w.logger.WithError(err).Error("Watchlist update serialization failed")
		return
	}
	w.sink.Broadcast(payload)
}
