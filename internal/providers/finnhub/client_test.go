package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

func testClient(t *testing.T, payload string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	log := testLogger()
	return NewClient(httputil.New(5*time.Second, log), log, server.URL, "test-key")
}

func TestClient_Quote(t *testing.T) {
	client := testClient(t, `{"c": 150.25, "d": 1.5, "dp": 1.01, "h": 151, "l": 148, "o": 149, "pc": 148.75, "t": 1755820800}`)

	quote, err := client.Quote(context.Background(), "TEST")
	require.NoError(t, err)

	assert.InDelta(t, 150.25, quote.Price, 1e-9)
	require.NotNil(t, quote.PrevClose)
	assert.InDelta(t, 148.75, *quote.PrevClose, 1e-9)
}

func TestClient_Quote_UnknownSymbol(t *testing.T) {
	// Finnhub answers unknown symbols with HTTP 200 and zeros
	client := testClient(t, `{"c": 0, "d": null, "dp": null, "h": 0, "l": 0, "o": 0, "pc": 0, "t": 0}`)

	_, err := client.Quote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price")
}

func TestClient_Candles(t *testing.T) {
	client := testClient(t, `{
		"s": "ok",
		"t": [1755648000, 1755734400, 1755820800],
		"o": [100, 101, 102],
		"h": [101, 102, 103],
		"l": [99, 100, 101],
		"c": [100.5, 101.5, 102.5],
		"v": [1000, 1100, 1200]
	}`)

	series, err := client.Candles(context.Background(), "TEST", 10)
	require.NoError(t, err)
	require.Len(t, series.Bars, 3)
	assert.NoError(t, series.Validate())
	assert.InDelta(t, 102.5, series.Bars[2].Close, 1e-9)
	assert.Equal(t, int64(1200), series.Bars[2].Volume)
}

func TestClient_Candles_NoData(t *testing.T) {
	client := testClient(t, `{"s": "no_data"}`)

	_, err := client.Candles(context.Background(), "TEST", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_data")
}

func TestClient_Candles_ColumnMismatch(t *testing.T) {
	client := testClient(t, `{
		"s": "ok",
		"t": [1755648000, 1755734400],
		"o": [100],
		"h": [101, 102],
		"l": [99, 100],
		"c": [100.5, 101.5],
		"v": [1000, 1100]
	}`)

	_, err := client.Candles(context.Background(), "TEST", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column length mismatch")
}

func TestClient_Profile_ScalesMillions(t *testing.T) {
	client := testClient(t, `{"name": "Test Corp", "exchange": "TEST EXCHANGE", "finnhubIndustry": "Technology", "country": "US", "marketCapitalization": 2500.5, "shareOutstanding": 16.2}`)

	profile, err := client.Profile(context.Background(), "TEST")
	require.NoError(t, err)

	assert.Equal(t, "Test Corp", profile.Name)
	require.NotNil(t, profile.MarketCap)
	assert.InDelta(t, 2500.5e6, *profile.MarketCap, 1)
	require.NotNil(t, profile.SharesOutstanding)
	assert.InDelta(t, 16.2e6, *profile.SharesOutstanding, 1)
}

func TestClient_News_NoVendorSentiment(t *testing.T) {
	client := testClient(t, `[
		{"headline": "Launch day", "source": "Wire", "url": "https://example.com/1", "datetime": 1755820800},
		{"headline": "", "source": "Wire", "url": "https://example.com/2", "datetime": 1755820800}
	]`)

	items, err := client.News(context.Background(), "TEST", 10)
	require.NoError(t, err)

	// Untitled entries are dropped; scores stay nil for every item
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Sentiment)
	assert.False(t, items[0].PublishedAt.IsZero())
}

func TestClient_Fundamentals_NotSupported(t *testing.T) {
	client := &Client{}
	_, err := client.Fundamentals(context.Background(), "TEST")
	assert.ErrorIs(t, err, contracts.ErrNotSupported)

	assert.False(t, client.Supports(contracts.KindFundamentals))
	assert.True(t, client.Supports(contracts.KindQuote))
}
