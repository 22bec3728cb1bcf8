package providers

import (
	"context"

	"github.com/wonny/stocklens/internal/contracts"
)

// Provider is the shared capability interface every vendor adapter
// implements. An adapter maps vendor field names, units and date
// formats into the shared data model; shared logic never branches on
// vendor identity.
//
// Not every vendor serves every data kind. Supports reports capability;
// unsupported methods return contracts.ErrNotSupported and the router
// leaves that adapter out of the chain for that kind.
type Provider interface {
	Name() string
	Supports(kind contracts.DataKind) bool

	Quote(ctx context.Context, symbol string) (*contracts.Quote, error)
	Candles(ctx context.Context, symbol string, days int) (*contracts.PriceSeries, error)
	Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error)
	Fundamentals(ctx context.Context, symbol string) (*contracts.FundamentalsSet, error)
	News(ctx context.Context, symbol string, limit int) ([]contracts.NewsItem, error)
}

// Routed wraps a fetched payload with its provenance and an optional
// fallback notice for the caller.
type Routed[T any] struct {
	Data     T
	Provider string
	Warning  string // non-empty when a fallback adapter satisfied the request
}
