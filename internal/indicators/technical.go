package indicators

import (
	"math"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/logger"
)

// Indicator parameters. Fixed: the deterministic output contract
// depends on these exact definitions.
const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	macdMinBars      = 35 // fully warmed signal line
	bollingerPeriod  = 20
	bollingerWidth   = 2.0
	volatilityWindow = 20
	// Annualization factor for daily log returns: sqrt(252 trading days)
	tradingDaysPerYear = 252
)

// Calculator computes technical indicators from a price series.
// SSOT: indicator math lives here only. Pure: same series, same output.
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new indicator calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log,
	}
}

// Compute builds the full indicator snapshot from a price series.
// Indicators with insufficient history are tagged not-computable,
// never defaulted to zero.
func (c *Calculator) Compute(series *contracts.PriceSeries) *contracts.IndicatorSet {
	closes := series.Closes()

	set := &contracts.IndicatorSet{
		SMA20:      smaValue(closes, 20),
		SMA50:      smaValue(closes, 50),
		SMA200:     smaValue(closes, 200),
		EMA20:      emaValue(closes, 20),
		EMA50:      emaValue(closes, 50),
		RSI14:      rsiValue(closes),
		MACD:       macdValue(closes),
		Bollinger:  bollingerValue(closes),
		Volatility: volatilityValue(closes),
		BarCount:   len(closes),
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":    series.Symbol,
		"bar_count": set.BarCount,
		"rsi_ok":    set.RSI14.Computable,
		"macd_ok":   set.MACD.Computable,
	}).Debug("Computed technical indicators")

	return set
}

// SMA returns the arithmetic mean of the last period closes.
func SMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	var sum float64
	for _, close := range closes[len(closes)-period:] {
		sum += close
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average with smoothing factor
// 2/(period+1), seeded by the SMA of the first period closes and
// updated recursively over the remaining closes.
func EMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	series := emaSeries(closes, period)
	return series[len(series)-1], true
}

// emaSeries returns the EMA value at every index from period-1 on.
func emaSeries(values []float64, period int) []float64 {
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	multiplier := 2.0 / (float64(period) + 1.0)
	series := make([]float64, 0, len(values)-period+1)
	series = append(series, seed)

	ema := seed
	for _, v := range values[period:] {
		ema = (v-ema)*multiplier + ema
		series = append(series, ema)
	}
	return series
}

// RSI returns Wilder's relative strength index over 14-period windows.
// A zero average loss yields 100, not a division error.
func RSI(closes []float64) (float64, bool) {
	if len(closes) < rsiPeriod+1 {
		return 0, false
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains = append(gains, delta)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -delta)
		}
	}

	var avgGain, avgLoss float64
	for i := 0; i < rsiPeriod; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= rsiPeriod
	avgLoss /= rsiPeriod

	// Wilder smoothing over the remaining deltas
	for i := rsiPeriod; i < len(gains); i++ {
		avgGain = (avgGain*(rsiPeriod-1) + gains[i]) / rsiPeriod
		avgLoss = (avgLoss*(rsiPeriod-1) + losses[i]) / rsiPeriod
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// MACD returns the MACD line (EMA12-EMA26), its EMA9 signal line and
// the histogram. Requires 35 bars for a fully warmed signal.
func MACD(closes []float64) (macd, signal, histogram float64, ok bool) {
	if len(closes) < macdMinBars {
		return 0, 0, 0, false
	}

	fast := emaSeries(closes, macdFastPeriod)
	slow := emaSeries(closes, macdSlowPeriod)

	// Align the two EMA series on the slow start index
	offset := macdSlowPeriod - macdFastPeriod
	macdLine := make([]float64, len(slow))
	for i := range slow {
		macdLine[i] = fast[i+offset] - slow[i]
	}

	signalSeries := emaSeries(macdLine, macdSignalPeriod)

	macd = macdLine[len(macdLine)-1]
	signal = signalSeries[len(signalSeries)-1]
	return macd, signal, macd - signal, true
}

// Bollinger returns the 20-period bands at 2 population standard
// deviations around the SMA.
func Bollinger(closes []float64) (upper, middle, lower float64, ok bool) {
	middle, ok = SMA(closes, bollingerPeriod)
	if !ok {
		return 0, 0, 0, false
	}

	window := closes[len(closes)-bollingerPeriod:]
	var variance float64
	for _, close := range window {
		diff := close - middle
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(bollingerPeriod))

	return middle + bollingerWidth*stddev, middle, middle - bollingerWidth*stddev, true
}

// Volatility returns the annualized standard deviation of daily log
// returns over the trailing 20-day window.
func Volatility(closes []float64) (float64, bool) {
	if len(closes) < volatilityWindow+1 {
		return 0, false
	}

	window := closes[len(closes)-volatilityWindow-1:]
	returns := make([]float64, 0, volatilityWindow)
	for i := 1; i < len(window); i++ {
		if window[i-1] <= 0 || window[i] <= 0 {
			return 0, false
		}
		returns = append(returns, math.Log(window[i]/window[i-1]))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear), true
}

func smaValue(closes []float64, period int) contracts.IndicatorValue {
	value, ok := SMA(closes, period)
	return contracts.IndicatorValue{Value: value, MinBars: period, Computable: ok}
}

func emaValue(closes []float64, period int) contracts.IndicatorValue {
	value, ok := EMA(closes, period)
	return contracts.IndicatorValue{Value: value, MinBars: period, Computable: ok}
}

func rsiValue(closes []float64) contracts.IndicatorValue {
	value, ok := RSI(closes)
	return contracts.IndicatorValue{Value: value, MinBars: rsiPeriod + 1, Computable: ok}
}

func macdValue(closes []float64) contracts.MACDValue {
	macd, signal, histogram, ok := MACD(closes)
	return contracts.MACDValue{
		MACD:       macd,
		Signal:     signal,
		Histogram:  histogram,
		MinBars:    macdMinBars,
		Computable: ok,
	}
}

func bollingerValue(closes []float64) contracts.BollingerValue {
	upper, middle, lower, ok := Bollinger(closes)
	return contracts.BollingerValue{
		Upper:      upper,
		Middle:     middle,
		Lower:      lower,
		MinBars:    bollingerPeriod,
		Computable: ok,
	}
}

func volatilityValue(closes []float64) contracts.IndicatorValue {
	value, ok := Volatility(closes)
	return contracts.IndicatorValue{Value: value, MinBars: volatilityWindow + 1, Computable: ok}
}
