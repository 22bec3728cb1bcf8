package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/logger"
)

// Router orchestrates vendor adapters behind a uniform interface.
// SSOT: provider precedence and fallback policy live here only.
//
// For each data kind the router tries the capable adapters in their
// static precedence order, exactly once each, and returns the first
// successful normalized result plus which adapter satisfied it. It
// never retries an adapter; when every capable adapter fails it
// surfaces a single DataUnavailableError for that kind.
type Router struct {
	chain  []Provider
	logger *logger.Logger
}

// NewRouter creates a router over adapters in precedence order.
func NewRouter(log *logger.Logger, chain ...Provider) *Router {
	return &Router{
		chain:  chain,
		logger: log,
	}
}

// Chain returns the adapters capable of serving kind, in precedence order.
func (r *Router) Chain(kind contracts.DataKind) []Provider {
	capable := make([]Provider, 0, len(r.chain))
	for _, p := range r.chain {
		if p.Supports(kind) {
			capable = append(capable, p)
		}
	}
	return capable
}

// Quote fetches a quote snapshot with fallback.
func (r *Router) Quote(ctx context.Context, symbol string) (Routed[*contracts.Quote], error) {
	return route(ctx, r, contracts.KindQuote, func(ctx context.Context, p Provider) (*contracts.Quote, error) {
		return p.Quote(ctx, symbol)
	})
}

// Candles fetches an OHLCV series with fallback.
func (r *Router) Candles(ctx context.Context, symbol string, days int) (Routed[*contracts.PriceSeries], error) {
	return route(ctx, r, contracts.KindOHLCV, func(ctx context.Context, p Provider) (*contracts.PriceSeries, error) {
		series, err := p.Candles(ctx, symbol, days)
		if err != nil {
			return nil, err
		}
		// A series that violates the ordering invariant is a schema
		// failure of the vendor payload, not a usable result.
		if err := series.Validate(); err != nil {
			return nil, err
		}
		return series, nil
	})
}

// Profile fetches a company profile with fallback.
func (r *Router) Profile(ctx context.Context, symbol string) (Routed[*contracts.CompanyProfile], error) {
	return route(ctx, r, contracts.KindProfile, func(ctx context.Context, p Provider) (*contracts.CompanyProfile, error) {
		return p.Profile(ctx, symbol)
	})
}

// Fundamentals fetches period-keyed fundamentals with fallback.
func (r *Router) Fundamentals(ctx context.Context, symbol string) (Routed[*contracts.FundamentalsSet], error) {
	return route(ctx, r, contracts.KindFundamentals, func(ctx context.Context, p Provider) (*contracts.FundamentalsSet, error) {
		fundamentals, err := p.Fundamentals(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if fundamentals == nil || len(fundamentals.Periods) == 0 {
			return nil, fmt.Errorf("no reporting periods returned")
		}
		return fundamentals, nil
	})
}

// News fetches recent news items with fallback.
func (r *Router) News(ctx context.Context, symbol string, limit int) (Routed[[]contracts.NewsItem], error) {
	return route(ctx, r, contracts.KindNews, func(ctx context.Context, p Provider) ([]contracts.NewsItem, error) {
		items, err := p.News(ctx, symbol, limit)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("no news items returned")
		}
		return items, nil
	})
}

// route walks the capable adapters for kind in order and returns the
// first success. Each adapter gets exactly one attempt.
func route[T any](ctx context.Context, r *Router, kind contracts.DataKind, fetch func(context.Context, Provider) (T, error)) (Routed[T], error) {
	var zero Routed[T]

	chain := r.Chain(kind)
	if len(chain) == 0 {
		return zero, &contracts.DataUnavailableError{Kind: kind}
	}

	var attempts []*contracts.AdapterError
	for _, p := range chain {
		data, err := fetch(ctx, p)
		if err != nil {
			if errors.Is(err, contracts.ErrNotSupported) {
				// Capability mismatch, not a failed attempt.
				continue
			}
			attempt := &contracts.AdapterError{Provider: p.Name(), Kind: kind, Err: err}
			attempts = append(attempts, attempt)
			r.logger.WithFields(map[string]interface{}{
				"provider": p.Name(),
				"kind":     string(kind),
				"error":    err.Error(),
			}).Warn("Provider attempt failed, advancing fallback chain")
			continue
		}

		routed := Routed[T]{Data: data, Provider: p.Name()}
		if len(attempts) > 0 {
			routed.Warning = fmt.Sprintf(
				"primary provider failed for %s (%s); using fallback provider %s",
				kind, attempts[len(attempts)-1].Provider, p.Name(),
			)
		}
		r.logger.WithFields(map[string]interface{}{
			"provider": p.Name(),
			"kind":     string(kind),
			"fallback": len(attempts) > 0,
		}).Debug("Provider request satisfied")
		return routed, nil
	}

	return zero, &contracts.DataUnavailableError{Kind: kind, Attempts: attempts}
}
