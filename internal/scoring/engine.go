package scoring

import (
	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

// Input categories reported on component scores.
const (
	CategoryTechnical   = "technical"
	CategoryFundamental = "fundamental"
	CategorySentiment   = "sentiment"
)

// Sub-score reference points. Each rule is a monotonic linear ramp
// onto [-1, +1] between two fixed cut points; values beyond the cut
// points saturate. The cut points are deliberate product constants,
// documented here next to the rules that use them.
const (
	rsiBullishAt = 30.0 // RSI at or below: fully bullish (+1)
	rsiBearishAt = 70.0 // RSI at or above: fully bearish (-1)

	// MACD histogram relative to SMA20 price scale
	macdStrongRatio = 0.010
	macdWeakRatio   = 0.002

	// SMA20 vs SMA50 spread saturates at +/-4%
	trendSaturationRatio = 0.04

	peBestBelow  = 10.0 // P/E at or below: +1
	peWorstAbove = 40.0 // P/E at or above: -1

	deBestBelow  = 0.3 // debt/equity at or below: +1
	deWorstAbove = 2.0 // debt/equity at or above: -1

	growthWorstBelow = -0.10 // revenue growth at or below: -1
	growthBestAbove  = 0.25  // revenue growth at or above: +1

	marginWorstBelow = 0.0  // net margin at or below: -1
	marginBestAbove  = 0.25 // net margin at or above: +1

	// News polarity saturates at the vendor's bullish/bearish bands
	sentimentSaturation = 0.35
)

// Engine combines indicator, metric and sentiment inputs into one
// composite score. SSOT: weighting and thresholds live here only,
// parameterized by the documented config table.
//
// Not-computable inputs are excluded from numerator and denominator
// alike — the weights renormalize over computable inputs, so missing
// data reduces confidence, never the score itself.
type Engine struct {
	cfg    config.ScoringConfig
	logger *logger.Logger
}

// NewEngine creates a new scoring engine from the weight table.
func NewEngine(cfg config.ScoringConfig, log *logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: log,
	}
}

// Score builds the composite score. Any of the inputs may be nil or
// partially not-computable; with zero computable inputs it fails with
// ErrInsufficientData instead of producing a degenerate score.
func (e *Engine) Score(
	indicators *contracts.IndicatorSet,
	metrics *contracts.MetricsSet,
	news *contracts.NewsSentimentSummary,
) (*contracts.CompositeScore, error) {
	components := []contracts.ComponentScore{
		scoreRSI(indicators, e.cfg.WeightRSI),
		scoreMACD(indicators, e.cfg.WeightMACD),
		scoreTrend(indicators, e.cfg.WeightTrend),
		scoreMetric("pe", metricOf(metrics, func(m *contracts.MetricsSet) contracts.MetricValue { return m.PE }), e.cfg.WeightPE, rampDown(peBestBelow, peWorstAbove)),
		scoreMetric("debt_to_equity", metricOf(metrics, func(m *contracts.MetricsSet) contracts.MetricValue { return m.DebtToEquity }), e.cfg.WeightDebtToEquity, rampDown(deBestBelow, deWorstAbove)),
		scoreMetric("revenue_growth", metricOf(metrics, func(m *contracts.MetricsSet) contracts.MetricValue { return m.RevenueGrowth }), e.cfg.WeightRevenueGrowth, rampUp(growthWorstBelow, growthBestAbove)),
		scoreMetric("net_margin", metricOf(metrics, func(m *contracts.MetricsSet) contracts.MetricValue { return m.NetMargin }), e.cfg.WeightNetMargin, rampUp(marginWorstBelow, marginBestAbove)),
		scoreSentiment(news, e.cfg.WeightSentiment),
	}

	var weightedSum, computableWeight float64
	totalWeight := e.cfg.TotalWeight()
	for _, component := range components {
		if !component.Computable {
			continue
		}
		weightedSum += component.Score * component.Weight
		computableWeight += component.Weight
	}

	if computableWeight == 0 {
		return nil, contracts.ErrInsufficientData
	}

	// Renormalize over computable inputs, then map [-1,1] onto [0,100]
	normalized := weightedSum / computableWeight
	score := (normalized + 1) * 50

	composite := &contracts.CompositeScore{
		Score:      score,
		Signal:     e.signalFor(score),
		Confidence: computableWeight / totalWeight,
		Components: components,
	}

	e.logger.WithFields(map[string]interface{}{
		"score":      composite.Score,
		"signal":     string(composite.Signal),
		"confidence": composite.Confidence,
	}).Debug("Computed composite score")

	return composite, nil
}

// signalFor maps a [0,100] score to its label. Thresholds are
// inclusive on the lower edge.
func (e *Engine) signalFor(score float64) contracts.SignalLabel {
	switch {
	case score >= e.cfg.ThresholdStrongBuy:
		return contracts.SignalStrongBuy
	case score >= e.cfg.ThresholdBuy:
		return contracts.SignalBuy
	case score >= e.cfg.ThresholdNeutral:
		return contracts.SignalNeutral
	case score >= e.cfg.ThresholdSell:
		return contracts.SignalSell
	default:
		return contracts.SignalStrongSell
	}
}

// scoreRSI: RSI 30 or below is fully bullish, 70 or above fully
// bearish, linear in between. Monotonically decreasing in RSI.
func scoreRSI(indicators *contracts.IndicatorSet, weight float64) contracts.ComponentScore {
	component := contracts.ComponentScore{Input: "rsi", Category: CategoryTechnical, Weight: weight}
	if indicators == nil || !indicators.RSI14.Computable {
		return component
	}
	component.Computable = true
	component.Score = clamp((rsiBearishAt - 2*indicators.RSI14.Value + rsiBullishAt) / (rsiBearishAt - rsiBullishAt))
	return component
}

// scoreMACD: histogram sign and magnitude, bucketed relative to the
// SMA20 price scale so the rule is scale-free across symbols.
func scoreMACD(indicators *contracts.IndicatorSet, weight float64) contracts.ComponentScore {
	component := contracts.ComponentScore{Input: "macd", Category: CategoryTechnical, Weight: weight}
	if indicators == nil || !indicators.MACD.Computable || !indicators.SMA20.Computable || indicators.SMA20.Value <= 0 {
		return component
	}
	component.Computable = true

	ratio := indicators.MACD.Histogram / indicators.SMA20.Value
	magnitude := ratio
	if magnitude < 0 {
		magnitude = -magnitude
	}

	var score float64
	switch {
	case magnitude >= macdStrongRatio:
		score = 1
	case magnitude >= macdWeakRatio:
		score = 0.5
	default:
		score = 0
	}
	if ratio < 0 {
		score = -score
	}
	component.Score = score
	return component
}

// scoreTrend: SMA20 above SMA50 is bullish; the spread saturates at
// +/-4% of SMA50.
func scoreTrend(indicators *contracts.IndicatorSet, weight float64) contracts.ComponentScore {
	component := contracts.ComponentScore{Input: "trend", Category: CategoryTechnical, Weight: weight}
	if indicators == nil || !indicators.SMA20.Computable || !indicators.SMA50.Computable || indicators.SMA50.Value <= 0 {
		return component
	}
	component.Computable = true
	spread := (indicators.SMA20.Value - indicators.SMA50.Value) / indicators.SMA50.Value
	component.Score = clamp(spread / trendSaturationRatio)
	return component
}

// scoreSentiment: average news polarity, saturating at the vendor's
// bullish/bearish label bands.
func scoreSentiment(news *contracts.NewsSentimentSummary, weight float64) contracts.ComponentScore {
	component := contracts.ComponentScore{Input: "news_sentiment", Category: CategorySentiment, Weight: weight}
	if news == nil || news.AveragePolarity == nil {
		return component
	}
	component.Computable = true
	component.Score = clamp(*news.AveragePolarity / sentimentSaturation)
	return component
}

// scoreMetric applies a ramp rule to one fundamental metric.
func scoreMetric(name string, metric *contracts.MetricValue, weight float64, rule func(float64) float64) contracts.ComponentScore {
	component := contracts.ComponentScore{Input: name, Category: CategoryFundamental, Weight: weight}
	if metric == nil || !metric.Computable {
		return component
	}
	component.Computable = true
	component.Score = rule(metric.Value)
	return component
}

// rampUp builds a monotonically increasing rule: -1 at or below worst,
// +1 at or above best, linear in between.
func rampUp(worstBelow, bestAbove float64) func(float64) float64 {
	return func(value float64) float64 {
		return clamp(2*(value-worstBelow)/(bestAbove-worstBelow) - 1)
	}
}

// rampDown builds a monotonically decreasing rule: +1 at or below
// best, -1 at or above worst.
func rampDown(bestBelow, worstAbove float64) func(float64) float64 {
	return func(value float64) float64 {
		return clamp(1 - 2*(value-bestBelow)/(worstAbove-bestBelow))
	}
}

func clamp(value float64) float64 {
	if value > 1 {
		return 1
	}
	if value < -1 {
		return -1
	}
	return value
}

func metricOf(metrics *contracts.MetricsSet, pick func(*contracts.MetricsSet) contracts.MetricValue) *contracts.MetricValue {
	if metrics == nil {
		return nil
	}
	value := pick(metrics)
	return &value
}
