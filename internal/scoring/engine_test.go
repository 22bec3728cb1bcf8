package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		WeightRSI:           0.20,
		WeightMACD:          0.20,
		WeightTrend:         0.10,
		WeightPE:            0.125,
		WeightDebtToEquity:  0.075,
		WeightRevenueGrowth: 0.125,
		WeightNetMargin:     0.075,
		WeightSentiment:     0.10,
		ThresholdStrongBuy:  80,
		ThresholdBuy:        60,
		ThresholdNeutral:    40,
		ThresholdSell:       20,
	}
}

func computableIndicator(value float64) contracts.IndicatorValue {
	return contracts.IndicatorValue{Value: value, Computable: true}
}

// rsiOnlyIndicators yields exactly one computable scoring input.
func rsiOnlyIndicators(rsi float64) *contracts.IndicatorSet {
	return &contracts.IndicatorSet{
		RSI14: computableIndicator(rsi),
	}
}

func TestEngine_Score_NoComputableInputs(t *testing.T) {
	engine := NewEngine(testScoringConfig(), testLogger())

	_, err := engine.Score(nil, nil, nil)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)

	// Present but entirely not-computable inputs count the same
	_, err = engine.Score(&contracts.IndicatorSet{}, &contracts.MetricsSet{}, &contracts.NewsSentimentSummary{})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestEngine_Score_RSIOnly(t *testing.T) {
	engine := NewEngine(testScoringConfig(), testLogger())

	tests := []struct {
		name       string
		rsi        float64
		wantScore  float64
		wantSignal contracts.SignalLabel
	}{
		{name: "oversold maps to 100", rsi: 30, wantScore: 100, wantSignal: contracts.SignalStrongBuy},
		{name: "deep oversold saturates", rsi: 5, wantScore: 100, wantSignal: contracts.SignalStrongBuy},
		{name: "midpoint maps to 50", rsi: 50, wantScore: 50, wantSignal: contracts.SignalNeutral},
		{name: "overbought maps to 0", rsi: 70, wantScore: 0, wantSignal: contracts.SignalStrongSell},
		{name: "linear between cut points", rsi: 40, wantScore: 75, wantSignal: contracts.SignalBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composite, err := engine.Score(rsiOnlyIndicators(tt.rsi), nil, nil)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScore, composite.Score, 1e-9)
			assert.Equal(t, tt.wantSignal, composite.Signal)
		})
	}
}

func TestEngine_Score_ConfidenceRenormalization(t *testing.T) {
	engine := NewEngine(testScoringConfig(), testLogger())

	// All three technical inputs computable, nothing else: computable
	// weight 0.5 out of 1.0. The score renormalizes over the computable
	// half; missing inputs reduce confidence, not the score.
	ind := &contracts.IndicatorSet{
		RSI14: computableIndicator(50),
		SMA20: computableIndicator(100),
		SMA50: computableIndicator(100),
		MACD:  contracts.MACDValue{Computable: true, Histogram: 0},
	}

	composite, err := engine.Score(ind, nil, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, composite.Confidence, 1e-9)
	assert.InDelta(t, 50, composite.Score, 1e-9) // every sub-score neutral

	// Component list always carries all inputs with their tags
	assert.Len(t, composite.Components, 8)
	computable := 0
	for _, component := range composite.Components {
		if component.Computable {
			computable++
		}
	}
	assert.Equal(t, 3, computable)
}

func TestEngine_Score_SignalThresholdsLowerEdgeInclusive(t *testing.T) {
	engine := NewEngine(testScoringConfig(), testLogger())

	tests := []struct {
		score float64
		want  contracts.SignalLabel
	}{
		{100, contracts.SignalStrongBuy},
		{80, contracts.SignalStrongBuy},
		{79.999, contracts.SignalBuy},
		{60, contracts.SignalBuy},
		{59.999, contracts.SignalNeutral},
		{40, contracts.SignalNeutral},
		{39.999, contracts.SignalSell},
		{20, contracts.SignalSell},
		{19.999, contracts.SignalStrongSell},
		{0, contracts.SignalStrongSell},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.signalFor(tt.score), "score %.3f", tt.score)
	}
}

func TestScoreMACD_Buckets(t *testing.T) {
	tests := []struct {
		name      string
		histogram float64
		sma20     float64
		want      float64
	}{
		{name: "strong positive", histogram: 2, sma20: 100, want: 1},
		{name: "weak positive", histogram: 0.5, sma20: 100, want: 0.5},
		{name: "flat", histogram: 0.01, sma20: 100, want: 0},
		{name: "weak negative", histogram: -0.5, sma20: 100, want: -0.5},
		{name: "strong negative", histogram: -2, sma20: 100, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &contracts.IndicatorSet{
				MACD:  contracts.MACDValue{Computable: true, Histogram: tt.histogram},
				SMA20: computableIndicator(tt.sma20),
			}
			component := scoreMACD(ind, 0.2)
			require.True(t, component.Computable)
			assert.InDelta(t, tt.want, component.Score, 1e-9)
		})
	}

	t.Run("not computable without a price scale", func(t *testing.T) {
		ind := &contracts.IndicatorSet{
			MACD: contracts.MACDValue{Computable: true, Histogram: 1},
		}
		assert.False(t, scoreMACD(ind, 0.2).Computable)
	})
}

func TestScoreTrend(t *testing.T) {
	tests := []struct {
		name  string
		sma20 float64
		sma50 float64
		want  float64
	}{
		{name: "strong uptrend saturates", sma20: 110, sma50: 100, want: 1},
		{name: "mild uptrend", sma20: 102, sma50: 100, want: 0.5},
		{name: "flat", sma20: 100, sma50: 100, want: 0},
		{name: "mild downtrend", sma20: 98, sma50: 100, want: -0.5},
		{name: "strong downtrend saturates", sma20: 90, sma50: 100, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &contracts.IndicatorSet{
				SMA20: computableIndicator(tt.sma20),
				SMA50: computableIndicator(tt.sma50),
			}
			component := scoreTrend(ind, 0.1)
			require.True(t, component.Computable)
			assert.InDelta(t, tt.want, component.Score, 1e-9)
		})
	}
}

func TestRampRules(t *testing.T) {
	pe := rampDown(10, 40)
	assert.InDelta(t, 1, pe(10), 1e-9)
	assert.InDelta(t, 1, pe(5), 1e-9)
	assert.InDelta(t, 0, pe(25), 1e-9)
	assert.InDelta(t, -1, pe(40), 1e-9)
	assert.InDelta(t, -1, pe(90), 1e-9)

	growth := rampUp(-0.10, 0.25)
	assert.InDelta(t, -1, growth(-0.10), 1e-9)
	assert.InDelta(t, -1, growth(-0.50), 1e-9)
	assert.InDelta(t, 1, growth(0.25), 1e-9)
	assert.InDelta(t, 1, growth(0.80), 1e-9)
	assert.InDelta(t, 0, growth(0.075), 1e-9)
}

func TestScoreSentiment(t *testing.T) {
	polarity := 0.175
	news := &contracts.NewsSentimentSummary{AveragePolarity: &polarity}
	component := scoreSentiment(news, 0.1)
	require.True(t, component.Computable)
	assert.InDelta(t, 0.5, component.Score, 1e-9)

	// Unscored window is not a neutral signal
	assert.False(t, scoreSentiment(&contracts.NewsSentimentSummary{ItemCount: 5}, 0.1).Computable)
	assert.False(t, scoreSentiment(nil, 0.1).Computable)
}

func TestEngine_Score_SixtyBarRally(t *testing.T) {
	engine := NewEngine(testScoringConfig(), testLogger())

	// An overbought rally with positive momentum: RSI drags the score
	// down while MACD and trend push it up.
	ind := &contracts.IndicatorSet{
		RSI14: computableIndicator(85),
		MACD:  contracts.MACDValue{Computable: true, Histogram: 3},
		SMA20: computableIndicator(110),
		SMA50: computableIndicator(100),
	}

	composite, err := engine.Score(ind, nil, nil)
	require.NoError(t, err)

	// weights: rsi .2 * -1, macd .2 * +1, trend .1 * +1 over 0.5
	assert.InDelta(t, (0.2*-1+0.2*1+0.1*1)/0.5, (composite.Score/50)-1, 1e-9)
	assert.Equal(t, contracts.SignalBuy, composite.Signal)
}
