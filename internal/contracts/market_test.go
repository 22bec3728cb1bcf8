package contracts

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceSeries_Validate(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}

	tests := []struct {
		name    string
		bars    []OHLCVBar
		wantErr bool
	}{
		{
			name:    "ascending dates",
			bars:    []OHLCVBar{{Date: day(0)}, {Date: day(1)}, {Date: day(2)}},
			wantErr: false,
		},
		{
			name:    "single bar",
			bars:    []OHLCVBar{{Date: day(0)}},
			wantErr: false,
		},
		{
			name:    "empty series",
			bars:    nil,
			wantErr: true,
		},
		{
			name:    "duplicate date",
			bars:    []OHLCVBar{{Date: day(0)}, {Date: day(0)}},
			wantErr: true,
		},
		{
			name:    "descending date",
			bars:    []OHLCVBar{{Date: day(2)}, {Date: day(1)}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := &PriceSeries{Symbol: "TEST", Bars: tt.bars}
			err := series.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPriceSeries_Closes(t *testing.T) {
	series := &PriceSeries{Bars: []OHLCVBar{{Close: 1}, {Close: 2}, {Close: 3}}}
	assert.Equal(t, []float64{1, 2, 3}, series.Closes())
	require.NotNil(t, series.Last())
	assert.Equal(t, 3.0, series.Last().Close)

	empty := &PriceSeries{}
	assert.Nil(t, empty.Last())
}

func TestFundamentalsSet_LatestPrior(t *testing.T) {
	var nilSet *FundamentalsSet
	assert.Nil(t, nilSet.Latest())
	assert.Nil(t, nilSet.Prior())

	one := &FundamentalsSet{Periods: []FundamentalPeriod{{Period: "2025"}}}
	require.NotNil(t, one.Latest())
	assert.Equal(t, "2025", one.Latest().Period)
	assert.Nil(t, one.Prior())

	two := &FundamentalsSet{Periods: []FundamentalPeriod{{Period: "2025"}, {Period: "2024"}}}
	assert.Equal(t, "2024", two.Prior().Period)
}

func TestDataUnavailableError(t *testing.T) {
	inner := &AdapterError{Provider: "alpha_vantage", Kind: KindQuote, Err: errors.New("rate limited")}
	err := &DataUnavailableError{Kind: KindQuote, Attempts: []*AdapterError{inner}}

	assert.Contains(t, err.Error(), "quote unavailable")
	assert.Contains(t, err.Error(), "alpha_vantage")

	assert.True(t, IsDataUnavailable(err))
	assert.True(t, IsDataUnavailable(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsDataUnavailable(errors.New("plain")))

	empty := &DataUnavailableError{Kind: KindNews}
	assert.Equal(t, "news unavailable: no capable provider", empty.Error())
}

func TestAdapterError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &AdapterError{Provider: "finnhub", Kind: KindNews, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "finnhub")
}
