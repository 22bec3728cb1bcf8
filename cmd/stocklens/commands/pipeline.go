package commands

import (
	"github.com/wonny/stocklens/internal/indicators"
	"github.com/wonny/stocklens/internal/metrics"
	"github.com/wonny/stocklens/internal/narrative"
	"github.com/wonny/stocklens/internal/providers"
	"github.com/wonny/stocklens/internal/providers/alphavantage"
	"github.com/wonny/stocklens/internal/providers/finnhub"
	"github.com/wonny/stocklens/internal/providers/yahoo"
	"github.com/wonny/stocklens/internal/report"
	"github.com/wonny/stocklens/internal/scoring"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// pipeline bundles the fully wired analysis stack shared by every
// command surface.
type pipeline struct {
	router     *providers.Router
	calculator *indicators.Calculator
	metrics    *metrics.Engine
	scoring    *scoring.Engine
	assembler  *report.Assembler
	narrative  *narrative.Engine
}

// buildPipeline wires adapters, router and engines from config.
// SSOT: provider precedence is decided in this function only —
// Alpha Vantage first, Finnhub second, keyless Yahoo last. Adapters
// without an API key are left out of the chain entirely.
func buildPipeline(cfg *config.Config, log *logger.Logger) *pipeline {
	chain := make([]providers.Provider, 0, 3)

	if cfg.AlphaVantage.APIKey != "" {
		client := httputil.New(cfg.RequestTimeout, log).WithRateLimit(cfg.AlphaVantage.RatePerMinute)
		chain = append(chain, alphavantage.NewClient(client, log, cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey))
	}
	if cfg.Finnhub.APIKey != "" {
		client := httputil.New(cfg.RequestTimeout, log).WithRateLimit(cfg.Finnhub.RatePerMinute)
		chain = append(chain, finnhub.NewClient(client, log, cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey))
	}
	chain = append(chain, yahoo.NewClient(httputil.New(cfg.RequestTimeout, log), log, cfg.Yahoo.ChartBaseURL, cfg.Yahoo.PageBaseURL))

	router := providers.NewRouter(log, chain...)
	calculator := indicators.NewCalculator(log)
	metricsEngine := metrics.NewEngine(log)
	scoringEngine := scoring.NewEngine(cfg.Scoring, log)
	assembler := report.NewAssembler(router, calculator, metricsEngine, scoringEngine, log)
	narrativeEngine := narrative.NewEngine(cfg.Claude, log)

	return &pipeline{
		router:     router,
		calculator: calculator,
		metrics:    metricsEngine,
		scoring:    scoringEngine,
		assembler:  assembler,
		narrative:  narrativeEngine,
	}
}
