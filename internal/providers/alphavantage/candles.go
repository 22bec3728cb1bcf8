package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/stocklens/internal/contracts"
)

// dailySeriesResponse mirrors the TIME_SERIES_DAILY payload.
type dailySeriesResponse struct {
	envelope
	Series map[string]map[string]string `json:"Time Series (Daily)"`
}

// Candles fetches daily OHLCV bars, trimmed to the most recent days.
func (c *Client) Candles(ctx context.Context, symbol string, days int) (*contracts.PriceSeries, error) {
	extra := url.Values{}
	// compact covers 100 bars; anything longer needs the full dump
	if days > 100 {
		extra.Set("outputsize", "full")
	} else {
		extra.Set("outputsize", "compact")
	}

	var payload dailySeriesResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("TIME_SERIES_DAILY", symbol, extra), &payload); err != nil {
		return nil, fmt.Errorf("daily series request failed: %w", err)
	}
	if err := payload.vendorError(); err != nil {
		return nil, err
	}
	if len(payload.Series) == 0 {
		return nil, fmt.Errorf("daily series schema validation failed: no time series in payload")
	}

	bars := make([]contracts.OHLCVBar, 0, len(payload.Series))
	for stamp, row := range payload.Series {
		bar, err := parseBar(stamp, row)
		if err != nil {
			// One malformed row invalidates the payload; the adapter
			// must not hand back a silently thinned series.
			return nil, fmt.Errorf("daily series schema validation failed: %w", err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}

	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// parseBar maps one vendor time-series row into an OHLCVBar.
func parseBar(stamp string, row map[string]string) (contracts.OHLCVBar, error) {
	date, err := time.Parse("2006-01-02", stamp)
	if err != nil {
		return contracts.OHLCVBar{}, fmt.Errorf("bad bar date %q: %w", stamp, err)
	}

	open, err := requireFloat("1. open", row["1. open"])
	if err != nil {
		return contracts.OHLCVBar{}, err
	}
	high, err := requireFloat("2. high", row["2. high"])
	if err != nil {
		return contracts.OHLCVBar{}, err
	}
	low, err := requireFloat("3. low", row["3. low"])
	if err != nil {
		return contracts.OHLCVBar{}, err
	}
	closePrice, err := requireFloat("4. close", row["4. close"])
	if err != nil {
		return contracts.OHLCVBar{}, err
	}
	volume, err := strconv.ParseInt(row["5. volume"], 10, 64)
	if err != nil {
		return contracts.OHLCVBar{}, fmt.Errorf("bad volume %q: %w", row["5. volume"], err)
	}

	return contracts.OHLCVBar{
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
