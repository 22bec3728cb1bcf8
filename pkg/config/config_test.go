package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 12*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.AlphaVantage.RatePerMinute)
	assert.Equal(t, 60, cfg.Finnhub.RatePerMinute)
	assert.Equal(t, "@every 15m", cfg.Watch.Schedule)
	assert.Equal(t, 1800, cfg.Claude.MaxTokens)

	// Flat weight table sums to one by default
	assert.InDelta(t, 1.0, cfg.Scoring.TotalWeight(), 1e-9)
	assert.InDelta(t, 80, cfg.Scoring.ThresholdStrongBuy, 1e-9)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "production")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	t.Setenv("WATCH_SYMBOLS", "AAPL, msft ,NVDA")
	t.Setenv("SCORING_WEIGHT_RSI", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, cfg.Watch.Symbols)
	assert.InDelta(t, 0.5, cfg.Scoring.WeightRSI, 1e-9)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "invalid env", key: "ENV", value: "sandbox"},
		{name: "timeout below one second", key: "REQUEST_TIMEOUT", value: "100ms"},
		{name: "negative weight", key: "SCORING_WEIGHT_MACD", value: "-0.2"},
		{name: "thresholds not descending", key: "SCORING_THRESHOLD_BUY", value: "90"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestScoringConfig_TotalWeight(t *testing.T) {
	cfg := ScoringConfig{
		WeightRSI:           0.2,
		WeightMACD:          0.2,
		WeightTrend:         0.1,
		WeightPE:            0.125,
		WeightDebtToEquity:  0.075,
		WeightRevenueGrowth: 0.125,
		WeightNetMargin:     0.075,
		WeightSentiment:     0.1,
	}
	assert.InDelta(t, 1.0, cfg.TotalWeight(), 1e-9)
}
