package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// ProviderName identifies this adapter in provenance records.
const ProviderName = "yahoo"

// Client handles communication with Yahoo Finance. Keyless, which
// makes it the fallback of last resort in the precedence chain.
// SSOT: Yahoo Finance calls are made from this package only.
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	chartBaseURL string
	pageBaseURL  string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, chartBaseURL, pageBaseURL string) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       log,
		chartBaseURL: chartBaseURL,
		pageBaseURL:  pageBaseURL,
	}
}

// Name returns the provider name used in provenance.
func (c *Client) Name() string {
	return ProviderName
}

// Supports reports adapter capability. The chart API serves quotes and
// bars; the profile page is scraped. No fundamentals or news.
func (c *Client) Supports(kind contracts.DataKind) bool {
	switch kind {
	case contracts.KindQuote, contracts.KindOHLCV, contracts.KindProfile:
		return true
	}
	return false
}

// chartResponse mirrors the v8 chart API payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamps []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// fetchChart calls the chart API for the given interval and range.
func (c *Client) fetchChart(ctx context.Context, symbol, interval, rng string) (*chartResponse, error) {
	chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.chartBaseURL, url.PathEscape(symbol), interval, rng)

	var payload chartResponse
	if err := c.httpClient.GetJSON(ctx, chartURL, &payload); err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("vendor error: %s", payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart schema validation failed: empty result")
	}
	return &payload, nil
}

// Quote derives a quote snapshot from the chart metadata.
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	payload, err := c.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return nil, fmt.Errorf("chart schema validation failed: no market price")
	}

	quote := &contracts.Quote{
		Symbol: symbol,
		Price:  meta.RegularMarketPrice,
		AsOf:   time.Now().UTC(),
	}
	if meta.RegularMarketTime > 0 {
		quote.AsOf = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	if meta.PreviousClose > 0 {
		prev := meta.PreviousClose
		change := meta.RegularMarketPrice - prev
		changePct := change / prev * 100
		quote.PrevClose = &prev
		quote.Change = &change
		quote.ChangePercent = &changePct
	}
	return quote, nil
}

// Candles fetches daily OHLCV bars, trimmed to the most recent days.
func (c *Client) Candles(ctx context.Context, symbol string, days int) (*contracts.PriceSeries, error) {
	rng := "2y"
	switch {
	case days <= 30:
		rng = "1mo"
	case days <= 90:
		rng = "3mo"
	case days <= 180:
		rng = "6mo"
	case days <= 365:
		rng = "1y"
	}

	payload, err := c.fetchChart(ctx, symbol, "1d", rng)
	if err != nil {
		return nil, err
	}

	result := payload.Chart.Result[0]
	if len(result.Timestamps) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart schema validation failed: no bars in payload")
	}
	quote := result.Indicators.Quote[0]

	bars := make([]contracts.OHLCVBar, 0, len(result.Timestamps))
	for i, ts := range result.Timestamps {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			return nil, fmt.Errorf("chart schema validation failed: column length mismatch")
		}
		// Yahoo pads holidays with null bars; skip them
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		var volume int64
		if quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		bars = append(bars, contracts.OHLCVBar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}

	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// Fundamentals is not served by this adapter.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*contracts.FundamentalsSet, error) {
	return nil, contracts.ErrNotSupported
}

// News is not served by this adapter.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]contracts.NewsItem, error) {
	return nil, contracts.ErrNotSupported
}
