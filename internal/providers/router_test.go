package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

// fakeProvider is a scriptable adapter for routing tests.
type fakeProvider struct {
	name   string
	kinds  map[contracts.DataKind]bool
	quote  *contracts.Quote
	series *contracts.PriceSeries
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Supports(kind contracts.DataKind) bool { return f.kinds[kind] }

func (f *fakeProvider) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.quote, nil
}

func (f *fakeProvider) Candles(ctx context.Context, symbol string, days int) (*contracts.PriceSeries, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func (f *fakeProvider) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &contracts.CompanyProfile{Symbol: symbol}, nil
}

func (f *fakeProvider) Fundamentals(ctx context.Context, symbol string) (*contracts.FundamentalsSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &contracts.FundamentalsSet{
		Symbol:  symbol,
		Periods: []contracts.FundamentalPeriod{{Period: "2025"}},
	}, nil
}

func (f *fakeProvider) News(ctx context.Context, symbol string, limit int) ([]contracts.NewsItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []contracts.NewsItem{{Headline: "ok"}}, nil
}

func allKinds() map[contracts.DataKind]bool {
	return map[contracts.DataKind]bool{
		contracts.KindQuote:        true,
		contracts.KindOHLCV:        true,
		contracts.KindProfile:      true,
		contracts.KindFundamentals: true,
		contracts.KindNews:         true,
	}
}

func validSeries(symbol string) *contracts.PriceSeries {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.OHLCVBar, 3)
	for i := range bars {
		bars[i] = contracts.OHLCVBar{Date: start.AddDate(0, 0, i), Open: 1, High: 2, Low: 1, Close: 1.5, Volume: 10}
	}
	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}
}

func TestRouter_PrimarySuccess(t *testing.T) {
	primary := &fakeProvider{name: "primary", kinds: allKinds(), quote: &contracts.Quote{Symbol: "TEST", Price: 10}}
	secondary := &fakeProvider{name: "secondary", kinds: allKinds(), quote: &contracts.Quote{Symbol: "TEST", Price: 11}}
	router := NewRouter(testLogger(), primary, secondary)

	routed, err := router.Quote(context.Background(), "TEST")
	require.NoError(t, err)

	assert.Equal(t, "primary", routed.Provider)
	assert.Equal(t, 10.0, routed.Data.Price)
	assert.Empty(t, routed.Warning)
	assert.Equal(t, 0, secondary.calls, "secondary must not be touched on primary success")
}

func TestRouter_FallbackOnPrimaryFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary", kinds: allKinds(), err: context.DeadlineExceeded}
	secondary := &fakeProvider{name: "secondary", kinds: allKinds(), quote: &contracts.Quote{Symbol: "TEST", Price: 11}}
	router := NewRouter(testLogger(), primary, secondary)

	routed, err := router.Quote(context.Background(), "TEST")
	require.NoError(t, err)

	// Provenance names the provider that actually answered, and the
	// fallback is surfaced as a warning rather than hidden.
	assert.Equal(t, "secondary", routed.Provider)
	assert.NotEmpty(t, routed.Warning)
	assert.Contains(t, routed.Warning, "primary")
	assert.Equal(t, 1, primary.calls, "failed adapter gets exactly one attempt")
}

func TestRouter_AllProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", kinds: allKinds(), err: errors.New("rate limited")}
	secondary := &fakeProvider{name: "secondary", kinds: allKinds(), err: errors.New("http 500")}
	router := NewRouter(testLogger(), primary, secondary)

	_, err := router.Quote(context.Background(), "TEST")
	require.Error(t, err)

	var unavailable *contracts.DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, contracts.KindQuote, unavailable.Kind)
	assert.Len(t, unavailable.Attempts, 2)
	assert.Equal(t, "primary", unavailable.Attempts[0].Provider)
	assert.Equal(t, "secondary", unavailable.Attempts[1].Provider)
}

func TestRouter_CapabilitySkipIsNotAnAttempt(t *testing.T) {
	// A provider that does not support the kind never appears in the
	// chain, and an ErrNotSupported return is not a failed attempt.
	noFundamentals := &fakeProvider{name: "limited", kinds: map[contracts.DataKind]bool{contracts.KindQuote: true}}
	full := &fakeProvider{name: "full", kinds: allKinds()}
	router := NewRouter(testLogger(), noFundamentals, full)

	chain := router.Chain(contracts.KindFundamentals)
	require.Len(t, chain, 1)
	assert.Equal(t, "full", chain[0].Name())

	routed, err := router.Fundamentals(context.Background(), "TEST")
	require.NoError(t, err)
	assert.Equal(t, "full", routed.Provider)
	assert.Empty(t, routed.Warning, "capability skip must not produce a fallback warning")
	assert.Equal(t, 0, noFundamentals.calls)
}

func TestRouter_NoCapableProvider(t *testing.T) {
	quoteOnly := &fakeProvider{name: "quotes", kinds: map[contracts.DataKind]bool{contracts.KindQuote: true}}
	router := NewRouter(testLogger(), quoteOnly)

	_, err := router.News(context.Background(), "TEST", 10)
	require.Error(t, err)

	var unavailable *contracts.DataUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Empty(t, unavailable.Attempts)
}

func TestRouter_CandlesRejectsUnorderedSeries(t *testing.T) {
	broken := validSeries("TEST")
	broken.Bars[2].Date = broken.Bars[0].Date // ordering violation

	primary := &fakeProvider{name: "primary", kinds: allKinds(), series: broken}
	secondary := &fakeProvider{name: "secondary", kinds: allKinds(), series: validSeries("TEST")}
	router := NewRouter(testLogger(), primary, secondary)

	routed, err := router.Candles(context.Background(), "TEST", 10)
	require.NoError(t, err)

	// The malformed payload counts as a failed attempt and routing
	// advances to the next adapter.
	assert.Equal(t, "secondary", routed.Provider)
	assert.NotEmpty(t, routed.Warning)
}

func TestRouter_NewsRejectsEmptyWindow(t *testing.T) {
	router := NewRouter(testLogger(), &emptyNewsProvider{&fakeProvider{name: "empty", kinds: allKinds()}})

	_, err := router.News(context.Background(), "TEST", 10)
	require.Error(t, err)
	assert.True(t, contracts.IsDataUnavailable(err))
}

// emptyNewsProvider returns a successful but empty news window.
type emptyNewsProvider struct {
	*fakeProvider
}

func (e *emptyNewsProvider) News(ctx context.Context, symbol string, limit int) ([]contracts.NewsItem, error) {
	return []contracts.NewsItem{}, nil
}
