package contracts

import "time"

// IndicatorValue is one computed indicator tagged with the bar count it
// required. A not-computable value is explicit; consumers must be able to
// tell "zero signal" apart from "insufficient history".
type IndicatorValue struct {
	Value      float64 `json:"value"`
	MinBars    int     `json:"min_bars"`
	Computable bool    `json:"computable"`
}

// MACDValue holds the MACD line, signal line and histogram.
type MACDValue struct {
	MACD       float64 `json:"macd"`
	Signal     float64 `json:"signal"`
	Histogram  float64 `json:"histogram"`
	MinBars    int     `json:"min_bars"`
	Computable bool    `json:"computable"`
}

// BollingerValue holds the Bollinger band levels.
type BollingerValue struct {
	Upper      float64 `json:"upper"`
	Middle     float64 `json:"middle"`
	Lower      float64 `json:"lower"`
	MinBars    int     `json:"min_bars"`
	Computable bool    `json:"computable"`
}

// IndicatorSet is the full technical snapshot computed from one PriceSeries.
type IndicatorSet struct {
	SMA20      IndicatorValue `json:"sma_20"`
	SMA50      IndicatorValue `json:"sma_50"`
	SMA200     IndicatorValue `json:"sma_200"`
	EMA20      IndicatorValue `json:"ema_20"`
	EMA50      IndicatorValue `json:"ema_50"`
	RSI14      IndicatorValue `json:"rsi_14"`
	MACD       MACDValue      `json:"macd"`
	Bollinger  BollingerValue `json:"bollinger"`
	Volatility IndicatorValue `json:"volatility"` // annualized, from daily log returns
	BarCount   int            `json:"bar_count"`
}

// MetricValue is one fundamental metric with an explicit computability tag.
// A zero or undefined denominator yields Computable=false, never NaN or Inf.
type MetricValue struct {
	Value      float64 `json:"value"`
	Computable bool    `json:"computable"`
	Reason     string  `json:"reason,omitempty"` // set when not computable
}

// MetricsSet is the derived fundamental snapshot.
type MetricsSet struct {
	PE             MetricValue `json:"pe"`
	PS             MetricValue `json:"ps"`
	DebtToEquity   MetricValue `json:"debt_to_equity"`
	RevenueGrowth  MetricValue `json:"revenue_growth"`
	EarningsGrowth MetricValue `json:"earnings_growth"`
	NetMargin      MetricValue `json:"net_margin"`
	ROE            MetricValue `json:"roe"`
	FCFYield       MetricValue `json:"fcf_yield"`
}

// SignalLabel is the discrete classification of a composite score.
type SignalLabel string

const (
	SignalStrongBuy  SignalLabel = "strong_buy"
	SignalBuy        SignalLabel = "buy"
	SignalNeutral    SignalLabel = "neutral"
	SignalSell       SignalLabel = "sell"
	SignalStrongSell SignalLabel = "strong_sell"
)

// ComponentScore is one scored input with its weight. Score is in [-1, 1].
type ComponentScore struct {
	Input      string  `json:"input"`
	Category   string  `json:"category"` // technical, fundamental, sentiment
	Score      float64 `json:"score"`
	Weight     float64 `json:"weight"`
	Computable bool    `json:"computable"`
}

// CompositeScore is the normalized scoring result.
// Score is in [0, 100]; Confidence is the computable weight share in [0, 1].
type CompositeScore struct {
	Score      float64          `json:"score"`
	Signal     SignalLabel      `json:"signal"`
	Confidence float64          `json:"confidence"`
	Components []ComponentScore `json:"components"`
}

// Report is the assembled, immutable per-request snapshot handed to the
// transport and narrative layers. Numeric fields are computed once by the
// pipeline; consumers read but never recompute them.
type Report struct {
	Symbol       string                `json:"symbol"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Quote        *Quote                `json:"quote,omitempty"`
	Series       *PriceSeries          `json:"series,omitempty"`
	Profile      *CompanyProfile       `json:"profile,omitempty"`
	Indicators   *IndicatorSet         `json:"indicators,omitempty"`
	Fundamentals *FundamentalsSet      `json:"fundamentals,omitempty"`
	Metrics      *MetricsSet           `json:"metrics,omitempty"`
	News         *NewsSentimentSummary `json:"news,omitempty"`
	Score        *CompositeScore       `json:"score,omitempty"`
	// Provenance records which vendor satisfied each data kind.
	Provenance map[DataKind]string `json:"provenance"`
	// Warnings carries fallback notices, e.g. "primary provider failed".
	Warnings []string `json:"warnings,omitempty"`
}
