package finnhub

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// ProviderName identifies this adapter in provenance records.
const ProviderName = "finnhub"

// Client handles communication with the Finnhub API.
// SSOT: Finnhub calls are made from this package only.
//
// Finnhub's free endpoints do not expose period-keyed statement data,
// so this adapter does not participate in the fundamentals chain.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new Finnhub client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Name returns the provider name used in provenance.
func (c *Client) Name() string {
	return ProviderName
}

// Supports reports adapter capability.
func (c *Client) Supports(kind contracts.DataKind) bool {
	switch kind {
	case contracts.KindQuote, contracts.KindOHLCV, contracts.KindProfile, contracts.KindNews:
		return true
	}
	return false
}

// endpoint builds a query URL for the given path and params.
func (c *Client) endpoint(path string, params url.Values) string {
	params.Set("token", c.apiKey)
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
}

// quoteResponse mirrors the /quote payload.
type quoteResponse struct {
	Current       float64  `json:"c"`
	Change        *float64 `json:"d"`
	ChangePercent *float64 `json:"dp"`
	High          *float64 `json:"h"`
	Low           *float64 `json:"l"`
	Open          *float64 `json:"o"`
	PrevClose     *float64 `json:"pc"`
	Timestamp     int64    `json:"t"`
}

// Quote fetches the latest quote snapshot.
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var payload quoteResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("/quote", params), &payload); err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}
	// Finnhub answers unknown symbols with an all-zero quote
	if payload.Current == 0 {
		return nil, fmt.Errorf("quote schema validation failed: no price for symbol")
	}

	asOf := time.Now().UTC()
	if payload.Timestamp > 0 {
		asOf = time.Unix(payload.Timestamp, 0).UTC()
	}

	return &contracts.Quote{
		Symbol:        symbol,
		Price:         payload.Current,
		Change:        payload.Change,
		ChangePercent: payload.ChangePercent,
		Open:          payload.Open,
		High:          payload.High,
		Low:           payload.Low,
		PrevClose:     payload.PrevClose,
		AsOf:          asOf,
	}, nil
}

// candleResponse mirrors the /stock/candle payload (column arrays).
type candleResponse struct {
	Status     string    `json:"s"`
	Timestamps []int64   `json:"t"`
	Opens      []float64 `json:"o"`
	Highs      []float64 `json:"h"`
	Lows       []float64 `json:"l"`
	Closes     []float64 `json:"c"`
	Volumes    []float64 `json:"v"`
}

// Candles fetches daily OHLCV bars for the trailing window.
func (c *Client) Candles(ctx context.Context, symbol string, days int) (*contracts.PriceSeries, error) {
	now := time.Now().UTC()
	// Calendar cushion: markets close on weekends and holidays
	lookback := now.AddDate(0, 0, -(days*7/5 + 10))

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", "D")
	params.Set("from", fmt.Sprintf("%d", lookback.Unix()))
	params.Set("to", fmt.Sprintf("%d", now.Unix()))

	var payload candleResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("/stock/candle", params), &payload); err != nil {
		return nil, fmt.Errorf("candle request failed: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("candle schema validation failed: status %q", payload.Status)
	}
	count := len(payload.Timestamps)
	if count == 0 ||
		len(payload.Opens) != count || len(payload.Highs) != count ||
		len(payload.Lows) != count || len(payload.Closes) != count ||
		len(payload.Volumes) != count {
		return nil, fmt.Errorf("candle schema validation failed: column length mismatch")
	}

	bars := make([]contracts.OHLCVBar, 0, count)
	for i, ts := range payload.Timestamps {
		bars = append(bars, contracts.OHLCVBar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   payload.Opens[i],
			High:   payload.Highs[i],
			Low:    payload.Lows[i],
			Close:  payload.Closes[i],
			Volume: int64(payload.Volumes[i]),
		})
	}
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}

	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// profileResponse mirrors the /stock/profile2 payload.
type profileResponse struct {
	Name              string   `json:"name"`
	Exchange          string   `json:"exchange"`
	Industry          string   `json:"finnhubIndustry"`
	Country           string   `json:"country"`
	MarketCapMillions *float64 `json:"marketCapitalization"`
	SharesOutstanding *float64 `json:"shareOutstanding"`
}

// Profile fetches company reference data.
func (c *Client) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var payload profileResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("/stock/profile2", params), &payload); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	if payload.Name == "" {
		return nil, fmt.Errorf("profile schema validation failed: empty payload")
	}

	profile := &contracts.CompanyProfile{
		Symbol:   symbol,
		Name:     payload.Name,
		Exchange: payload.Exchange,
		Industry: payload.Industry,
		Country:  payload.Country,
	}
	// Finnhub reports market cap and share count in millions
	if payload.MarketCapMillions != nil {
		cap := *payload.MarketCapMillions * 1e6
		profile.MarketCap = &cap
	}
	if payload.SharesOutstanding != nil {
		shares := *payload.SharesOutstanding * 1e6
		profile.SharesOutstanding = &shares
	}
	return profile, nil
}

// Fundamentals is not served by this adapter.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*contracts.FundamentalsSet, error) {
	return nil, contracts.ErrNotSupported
}

// newsEntry mirrors one /company-news item. Finnhub does not score
// article sentiment, so Sentiment stays nil on normalized items.
type newsEntry struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

// News fetches headlines from the trailing 30 days.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]contracts.NewsItem, error) {
	now := time.Now().UTC()

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", now.AddDate(0, 0, -30).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))

	var payload []newsEntry
	if err := c.httpClient.GetJSON(ctx, c.endpoint("/company-news", params), &payload); err != nil {
		return nil, fmt.Errorf("company news request failed: %w", err)
	}

	if limit <= 0 || limit > len(payload) {
		limit = len(payload)
	}

	items := make([]contracts.NewsItem, 0, limit)
	for _, entry := range payload[:limit] {
		if entry.Headline == "" {
			continue
		}
		item := contracts.NewsItem{
			Headline: entry.Headline,
			Source:   entry.Source,
			URL:      entry.URL,
		}
		if entry.Datetime > 0 {
			item.PublishedAt = time.Unix(entry.Datetime, 0).UTC()
		}
		items = append(items, item)
	}

	return items, nil
}
