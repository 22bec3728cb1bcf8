package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/internal/indicators"
	"github.com/wonny/stocklens/internal/metrics"
	"github.com/wonny/stocklens/internal/providers"
	"github.com/wonny/stocklens/internal/scoring"
	"github.com/wonny/stocklens/pkg/logger"
)

// Report sections a caller can request. An empty request means all.
const (
	SectionQuote        = "quote"
	SectionProfile      = "profile"
	SectionTechnicals   = "technicals"
	SectionFundamentals = "fundamentals"
	SectionNews         = "news"
	SectionScore        = "score"
)

// Defaults for one analysis window.
const (
	// Enough calendar days for a warmed 200-day SMA
	defaultLookbackDays = 400
	defaultNewsLimit    = 20
)

// Options narrows one report request.
type Options struct {
	// Sections to include; empty means all sections.
	Sections []string
	// LookbackDays bounds the OHLCV window; 0 uses the default.
	LookbackDays int
	// NewsLimit bounds the news window; 0 uses the default.
	NewsLimit int
}

// Assembler runs the full analysis pipeline for one symbol and builds
// the immutable report snapshot. SSOT: pipeline orchestration lives
// here only; transports call Assemble and never talk to the router or
// engines directly.
//
// Quote and OHLCV are mandatory inputs: when their fallback chains are
// exhausted the whole request fails. Profile, fundamentals and news are
// optional; their absence degrades the affected sections and is
// recorded as a warning instead of failing the report. A requested
// score with zero computable inputs is terminal too: the request fails
// with contracts.ErrInsufficientData rather than returning a report
// whose missing score is indistinguishable from an unrequested one.
type Assembler struct {
	router     *providers.Router
	calculator *indicators.Calculator
	metrics    *metrics.Engine
	scoring    *scoring.Engine
	logger     *logger.Logger
}

// NewAssembler creates a report assembler over the routed pipeline.
func NewAssembler(
	router *providers.Router,
	calculator *indicators.Calculator,
	metricsEngine *metrics.Engine,
	scoringEngine *scoring.Engine,
	log *logger.Logger,
) *Assembler {
	return &Assembler{
		router:     router,
		calculator: calculator,
		metrics:    metricsEngine,
		scoring:    scoringEngine,
		logger:     log,
	}
}

// Assemble fetches all required data kinds concurrently, runs the
// computation engines on the results and returns the report. The
// request-scoped context bounds every upstream call.
func (a *Assembler) Assemble(ctx context.Context, symbol string, opts Options) (*contracts.Report, error) {
	want := requestedSections(opts.Sections)
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = defaultLookbackDays
	}
	newsLimit := opts.NewsLimit
	if newsLimit <= 0 {
		newsLimit = defaultNewsLimit
	}

	started := time.Now()

	var (
		wg sync.WaitGroup

		quoteRes        providers.Routed[*contracts.Quote]
		quoteErr        error
		seriesRes       providers.Routed[*contracts.PriceSeries]
		seriesErr       error
		profileRes      providers.Routed[*contracts.CompanyProfile]
		profileErr      error
		fundamentalsRes providers.Routed[*contracts.FundamentalsSet]
		fundamentalsErr error
		newsRes         providers.Routed[[]contracts.NewsItem]
		newsErr         error
	)

	// One goroutine per data kind; each writes only its own slot, so
	// the only synchronization point is the join.
	wg.Add(2)
	go func() {
		defer wg.Done()
		quoteRes, quoteErr = a.router.Quote(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		seriesRes, seriesErr = a.router.Candles(ctx, symbol, lookback)
	}()

	if want[SectionProfile] || want[SectionFundamentals] || want[SectionScore] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profileRes, profileErr = a.router.Profile(ctx, symbol)
		}()
	}
	if want[SectionFundamentals] || want[SectionScore] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fundamentalsRes, fundamentalsErr = a.router.Fundamentals(ctx, symbol)
		}()
	}
	if want[SectionNews] || want[SectionScore] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			newsRes, newsErr = a.router.News(ctx, symbol, newsLimit)
		}()
	}
	wg.Wait()

	// Mandatory inputs: a report without a price is not a report.
	if quoteErr != nil {
		return nil, fmt.Errorf("quote unavailable for %s: %w", symbol, quoteErr)
	}
	if seriesErr != nil {
		return nil, fmt.Errorf("price history unavailable for %s: %w", symbol, seriesErr)
	}

	rpt := &contracts.Report{
		Symbol:      symbol,
		GeneratedAt: time.Now().UTC(),
		Provenance:  map[contracts.DataKind]string{},
	}

	rpt.Provenance[contracts.KindQuote] = quoteRes.Provider
	rpt.Provenance[contracts.KindOHLCV] = seriesRes.Provider
	appendWarning(rpt, quoteRes.Warning)
	appendWarning(rpt, seriesRes.Warning)

	if want[SectionQuote] {
		rpt.Quote = quoteRes.Data
	}

	indicatorSet := a.calculator.Compute(seriesRes.Data)
	if want[SectionTechnicals] {
		rpt.Series = seriesRes.Data
		rpt.Indicators = indicatorSet
	}

	var profile *contracts.CompanyProfile
	switch {
	case profileErr != nil:
		// The router error already carries the kind prefix
		appendWarning(rpt, profileErr.Error())
	case profileRes.Provider != "":
		profile = profileRes.Data
		rpt.Provenance[contracts.KindProfile] = profileRes.Provider
		appendWarning(rpt, profileRes.Warning)
		if want[SectionProfile] {
			rpt.Profile = profile
		}
	}

	var metricsSet *contracts.MetricsSet
	switch {
	case fundamentalsErr != nil:
		appendWarning(rpt, fundamentalsErr.Error())
	case fundamentalsRes.Provider != "":
		rpt.Provenance[contracts.KindFundamentals] = fundamentalsRes.Provider
		appendWarning(rpt, fundamentalsRes.Warning)
		metricsSet = a.metrics.Compute(fundamentalsRes.Data, quoteRes.Data, profile)
		if want[SectionFundamentals] {
			rpt.Fundamentals = fundamentalsRes.Data
			rpt.Metrics = metricsSet
		}
	}

	var newsSummary *contracts.NewsSentimentSummary
	switch {
	case newsErr != nil:
		appendWarning(rpt, newsErr.Error())
	case newsRes.Provider != "":
		rpt.Provenance[contracts.KindNews] = newsRes.Provider
		appendWarning(rpt, newsRes.Warning)
		newsSummary = SummarizeNews(symbol, newsRes.Data)
		if want[SectionNews] {
			rpt.News = newsSummary
		}
	}

	if want[SectionScore] {
		score, err := a.scoring.Score(indicatorSet, metricsSet, newsSummary)
		if err != nil {
			return nil, fmt.Errorf("score for %s: %w", symbol, err)
		}
		rpt.Score = score
	}

	a.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"duration_ms": time.Since(started).Milliseconds(),
		"warnings":    len(rpt.Warnings),
		"scored":      rpt.Score != nil,
	}).Info("Assembled report")

	return rpt, nil
}

// SummarizeNews aggregates a bounded news window. Items without a
// vendor score count toward ItemCount but not the average; with zero
// scored items the average stays nil.
func SummarizeNews(symbol string, items []contracts.NewsItem) *contracts.NewsSentimentSummary {
	summary := &contracts.NewsSentimentSummary{
		Symbol:    symbol,
		ItemCount: len(items),
	}

	var sum float64
	for _, item := range items {
		if item.Sentiment == nil {
			continue
		}
		sum += *item.Sentiment
		summary.ScoredCount++
	}
	if summary.ScoredCount > 0 {
		avg := sum / float64(summary.ScoredCount)
		summary.AveragePolarity = &avg
	}
	return summary
}

// requestedSections normalizes the section filter into a lookup set.
func requestedSections(sections []string) map[string]bool {
	want := map[string]bool{}
	if len(sections) == 0 {
		for _, s := range AllSections() {
			want[s] = true
		}
		return want
	}
	for _, s := range sections {
		want[s] = true
	}
	return want
}

// AllSections lists every report section in canonical order.
func AllSections() []string {
	return []string{
		SectionQuote,
		SectionProfile,
		SectionTechnicals,
		SectionFundamentals,
		SectionNews,
		SectionScore,
	}
}

// ValidSection reports whether name is a known report section.
func ValidSection(name string) bool {
	for _, s := range AllSections() {
		if s == name {
			return true
		}
	}
	return false
}

func appendWarning(rpt *contracts.Report, warning string) {
	if warning == "" {
		return
	}
	rpt.Warnings = append(rpt.Warnings, warning)
}
