package alphavantage

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

func TestParseFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{raw: "123.45", want: func() *float64 { v := 123.45; return &v }()},
		{raw: "-0.5", want: func() *float64 { v := -0.5; return &v }()},
		{raw: "2.5%", want: func() *float64 { v := 2.5; return &v }()},
		{raw: "", want: nil},
		{raw: "None", want: nil},
		{raw: "-", want: nil},
		{raw: "null", want: nil},
		{raw: "abc", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parseFloat(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestEnvelope_VendorError(t *testing.T) {
	assert.NoError(t, (&envelope{}).vendorError())
	assert.Error(t, (&envelope{Note: "5 calls per minute"}).vendorError())
	assert.Error(t, (&envelope{Information: "premium endpoint"}).vendorError())
	assert.Error(t, (&envelope{ErrorMessage: "Invalid API call"}).vendorError())
}

func TestClient_Quote(t *testing.T) {
	client := testClient(t, `{
		"Global Quote": {
			"01. symbol": "TEST",
			"02. open": "100.5",
			"03. high": "102.0",
			"04. low": "99.0",
			"05. price": "101.25",
			"07. latest trading day": "2026-08-21",
			"08. previous close": "100.0",
			"09. change": "1.25",
			"10. change percent": "1.25%"
		}
	}`)

	quote, err := client.Quote(context.Background(), "TEST")
	require.NoError(t, err)

	assert.Equal(t, "TEST", quote.Symbol)
	assert.InDelta(t, 101.25, quote.Price, 1e-9)
	require.NotNil(t, quote.ChangePercent)
	assert.InDelta(t, 1.25, *quote.ChangePercent, 1e-9)
	assert.Equal(t, 2026, quote.AsOf.Year())
}

func TestClient_Quote_MissingPrice(t *testing.T) {
	client := testClient(t, `{"Global Quote": {"01. symbol": "TEST"}}`)

	_, err := client.Quote(context.Background(), "TEST")
	assert.Error(t, err)
}

func TestClient_Quote_VendorRateLimit(t *testing.T) {
	client := testClient(t, `{"Note": "Thank you for using Alpha Vantage! 5 calls per minute."}`)

	_, err := client.Quote(context.Background(), "TEST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestClient_Candles(t *testing.T) {
	client := testClient(t, `{
		"Time Series (Daily)": {
			"2026-08-20": {"1. open": "101", "2. high": "103", "3. low": "100", "4. close": "102", "5. volume": "2000"},
			"2026-08-19": {"1. open": "100", "2. high": "102", "3. low": "99", "4. close": "101", "5. volume": "1000"}
		}
	}`)

	series, err := client.Candles(context.Background(), "TEST", 30)
	require.NoError(t, err)
	require.Len(t, series.Bars, 2)

	// Vendor sends newest-first; normalized series is oldest-first
	assert.True(t, series.Bars[0].Date.Before(series.Bars[1].Date))
	assert.InDelta(t, 101, series.Bars[0].Close, 1e-9)
	assert.InDelta(t, 102, series.Bars[1].Close, 1e-9)
	assert.NoError(t, series.Validate())
}

func TestClient_Candles_MalformedRowFailsPayload(t *testing.T) {
	client := testClient(t, `{
		"Time Series (Daily)": {
			"2026-08-20": {"1. open": "101", "2. high": "103", "3. low": "100", "4. close": "102", "5. volume": "2000"},
			"2026-08-19": {"1. open": "100", "2. high": "102", "3. low": "99", "4. close": "None", "5. volume": "1000"}
		}
	}`)

	_, err := client.Candles(context.Background(), "TEST", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestClient_News(t *testing.T) {
	client := testClient(t, `{
		"feed": [
			{"title": "Earnings beat", "source": "Wire", "url": "https://example.com/1",
			 "time_published": "20260820T130000", "overall_sentiment_score": "0.35", "overall_sentiment_label": "Bullish"},
			{"title": "Sector update", "source": "Wire", "url": "https://example.com/2",
			 "time_published": "20260819T090000", "overall_sentiment_score": "None", "overall_sentiment_label": ""}
		]
	}`)

	items, err := client.News(context.Background(), "TEST", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Sentiment)
	assert.InDelta(t, 0.35, *items[0].Sentiment, 1e-9)
	assert.Equal(t, time.Date(2026, 8, 20, 13, 0, 0, 0, time.UTC), items[0].PublishedAt)

	// Unscored entry stays unscored instead of defaulting to zero
	assert.Nil(t, items[1].Sentiment)
}

func TestClient_Supports(t *testing.T) {
	client := &Client{}
	for _, kind := range []contracts.DataKind{
		contracts.KindQuote, contracts.KindOHLCV, contracts.KindProfile,
		contracts.KindFundamentals, contracts.KindNews,
	} {
		assert.True(t, client.Supports(kind), string(kind))
	}
	assert.False(t, client.Supports(contracts.DataKind("options")))
}
