package contracts

import (
	"fmt"
	"time"
)

// DataKind identifies one routable category of upstream market data.
type DataKind string

const (
	KindQuote        DataKind = "quote"
	KindOHLCV        DataKind = "ohlcv"
	KindProfile      DataKind = "profile"
	KindFundamentals DataKind = "fundamentals"
	KindNews         DataKind = "news"
)

// OHLCVBar represents one daily trading bar.
type OHLCVBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an ordered bar sequence, oldest first.
// Invariant: strictly increasing dates, at least one bar.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []OHLCVBar `json:"bars"`
}

// Validate checks the series ordering invariant.
func (s *PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return fmt.Errorf("price series for %s is empty", s.Symbol)
	}
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("price series for %s is not strictly ascending at index %d", s.Symbol, i)
		}
	}
	return nil
}

// Closes returns the close prices in series order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		closes[i] = bar.Close
	}
	return closes
}

// Last returns the most recent bar, or nil for an empty series.
func (s *PriceSeries) Last() *OHLCVBar {
	if len(s.Bars) == 0 {
		return nil
	}
	return &s.Bars[len(s.Bars)-1]
}

// Quote is an immutable price snapshot.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        *float64  `json:"change"`
	ChangePercent *float64  `json:"change_percent"`
	Open          *float64  `json:"open,omitempty"`
	High          *float64  `json:"high,omitempty"`
	Low           *float64  `json:"low,omitempty"`
	PrevClose     *float64  `json:"prev_close,omitempty"`
	AsOf          time.Time `json:"as_of"`
}

// CompanyProfile holds static company reference data.
// Optional fields stay nil when the vendor did not return them;
// adapters must never fill in a plausible-looking default.
type CompanyProfile struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name,omitempty"`
	Exchange          string   `json:"exchange,omitempty"`
	Sector            string   `json:"sector,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	Country           string   `json:"country,omitempty"`
	MarketCap         *float64 `json:"market_cap"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
}

// FundamentalPeriod holds the raw statement values of one reporting period.
// All values are optional; absence is meaningful downstream.
type FundamentalPeriod struct {
	Period       string   `json:"period"` // fiscal year or quarter label, e.g. "2024"
	EPS          *float64 `json:"eps"`
	Revenue      *float64 `json:"revenue"`
	NetIncome    *float64 `json:"net_income"`
	TotalDebt    *float64 `json:"total_debt"`
	TotalEquity  *float64 `json:"total_equity"`
	FreeCashFlow *float64 `json:"free_cash_flow"`
}

// FundamentalsSet is the period-keyed fundamentals snapshot,
// most recent period first. At least the latest period is required
// before any metric can be computed.
type FundamentalsSet struct {
	Symbol  string              `json:"symbol"`
	Periods []FundamentalPeriod `json:"periods"`
}

// Latest returns the most recent reporting period, or nil.
func (f *FundamentalsSet) Latest() *FundamentalPeriod {
	if f == nil || len(f.Periods) == 0 {
		return nil
	}
	return &f.Periods[0]
}

// Prior returns the second most recent reporting period, or nil.
func (f *FundamentalsSet) Prior() *FundamentalPeriod {
	if f == nil || len(f.Periods) < 2 {
		return nil
	}
	return &f.Periods[1]
}

// NewsItem is a single headline, with vendor sentiment when provided.
type NewsItem struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	// Sentiment is the vendor-reported polarity in [-1, 1], nil when
	// the vendor does not score its articles.
	Sentiment      *float64 `json:"sentiment"`
	SentimentLabel string   `json:"sentiment_label,omitempty"`
}

// NewsSentimentSummary aggregates a bounded news window.
type NewsSentimentSummary struct {
	Symbol      string   `json:"symbol"`
	ItemCount   int      `json:"item_count"`
	ScoredCount int      `json:"scored_count"`
	// AveragePolarity is nil when no item carried a vendor score,
	// which is distinct from an average of zero.
	AveragePolarity *float64 `json:"average_polarity"`
}
