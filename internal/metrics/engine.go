package metrics

import (
	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/logger"
)

// Engine derives fundamental metrics from reported statement values.
// SSOT: ratio math lives here only. Pure: same inputs, same output.
//
// Every ratio with a zero, negative-where-invalid or absent denominator
// is tagged not-computable with a reason; the engine never emits NaN
// or Inf.
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new metrics engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		logger: log,
	}
}

// Compute builds the metric snapshot. Quote and profile are optional;
// metrics that need them degrade to not-computable when absent.
func (e *Engine) Compute(fundamentals *contracts.FundamentalsSet, quote *contracts.Quote, profile *contracts.CompanyProfile) *contracts.MetricsSet {
	latest := fundamentals.Latest()
	prior := fundamentals.Prior()

	set := &contracts.MetricsSet{
		PE:             peRatio(quote, latest),
		PS:             psRatio(profile, latest),
		DebtToEquity:   debtToEquity(latest),
		RevenueGrowth:  growth(revenueOf(latest), revenueOf(prior), "revenue"),
		EarningsGrowth: growth(netIncomeOf(latest), netIncomeOf(prior), "net income"),
		NetMargin:      netMargin(latest),
		ROE:            returnOnEquity(latest),
		FCFYield:       fcfYield(profile, latest),
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":     fundamentals.Symbol,
		"periods":    len(fundamentals.Periods),
		"pe_ok":      set.PE.Computable,
		"growth_ok":  set.RevenueGrowth.Computable,
	}).Debug("Computed fundamental metrics")

	return set
}

func computable(value float64) contracts.MetricValue {
	return contracts.MetricValue{Value: value, Computable: true}
}

func notComputable(reason string) contracts.MetricValue {
	return contracts.MetricValue{Computable: false, Reason: reason}
}

// peRatio is price / EPS. Zero or negative earnings make the multiple
// meaningless, so those are not-computable rather than negative.
func peRatio(quote *contracts.Quote, latest *contracts.FundamentalPeriod) contracts.MetricValue {
	if quote == nil {
		return notComputable("no quote available")
	}
	if latest == nil || latest.EPS == nil {
		return notComputable("EPS not reported")
	}
	if *latest.EPS <= 0 {
		return notComputable("EPS is zero or negative")
	}
	return computable(quote.Price / *latest.EPS)
}

// psRatio is market cap / revenue.
func psRatio(profile *contracts.CompanyProfile, latest *contracts.FundamentalPeriod) contracts.MetricValue {
	if profile == nil || profile.MarketCap == nil {
		return notComputable("market cap not available")
	}
	if latest == nil || latest.Revenue == nil {
		return notComputable("revenue not reported")
	}
	if *latest.Revenue <= 0 {
		return notComputable("revenue is zero or negative")
	}
	return computable(*profile.MarketCap / *latest.Revenue)
}

// debtToEquity is total debt / total equity.
func debtToEquity(latest *contracts.FundamentalPeriod) contracts.MetricValue {
	if latest == nil || latest.TotalDebt == nil {
		return notComputable("total debt not reported")
	}
	if latest.TotalEquity == nil {
		return notComputable("total equity not reported")
	}
	if *latest.TotalEquity <= 0 {
		return notComputable("total equity is zero or negative")
	}
	return computable(*latest.TotalDebt / *latest.TotalEquity)
}

// growth is (current - prior) / |prior| over the two most recent periods.
func growth(current, prior *float64, what string) contracts.MetricValue {
	if current == nil || prior == nil {
		return notComputable(what + " requires two reported periods")
	}
	if *prior == 0 {
		return notComputable("prior " + what + " is zero")
	}
	delta := *current - *prior
	base := *prior
	if base < 0 {
		base = -base
	}
	return computable(delta / base)
}

// netMargin is net income / revenue.
func netMargin(latest *contracts.FundamentalPeriod) contracts.MetricValue {
	if latest == nil || latest.NetIncome == nil {
		return notComputable("net income not reported")
	}
	if latest.Revenue == nil {
		return notComputable("revenue not reported")
	}
	if *latest.Revenue <= 0 {
		return notComputable("revenue is zero or negative")
	}
	return computable(*latest.NetIncome / *latest.Revenue)
}

// returnOnEquity is net income / total equity.
func returnOnEquity(latest *contracts.FundamentalPeriod) contracts.MetricValue {
	if latest == nil || latest.NetIncome == nil {
		return notComputable("net income not reported")
	}
	if latest.TotalEquity == nil {
		return notComputable("total equity not reported")
	}
	if *latest.TotalEquity <= 0 {
		return notComputable("total equity is zero or negative")
	}
	return computable(*latest.NetIncome / *latest.TotalEquity)
}

// fcfYield is free cash flow / market cap.
func fcfYield(profile *contracts.CompanyProfile, latest *contracts.FundamentalPeriod) contracts.MetricValue {
	if latest == nil || latest.FreeCashFlow == nil {
		return notComputable("free cash flow not reported")
	}
	if profile == nil || profile.MarketCap == nil {
		return notComputable("market cap not available")
	}
	if *profile.MarketCap <= 0 {
		return notComputable("market cap is zero or negative")
	}
	return computable(*latest.FreeCashFlow / *profile.MarketCap)
}

func revenueOf(p *contracts.FundamentalPeriod) *float64 {
	if p == nil {
		return nil
	}
	return p.Revenue
}

func netIncomeOf(p *contracts.FundamentalPeriod) *float64 {
	if p == nil {
		return nil
	}
	return p.NetIncome
}
