package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
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

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := testLogger()
	return NewClient(httputil.New(5*time.Second, log), log, server.URL, server.URL)
}

func jsonHandler(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}
}

func TestClient_Quote_FromChartMeta(t *testing.T) {
	client := testClient(t, jsonHandler(`{
		"chart": {
			"result": [{
				"meta": {"regularMarketPrice": 230.5, "chartPreviousClose": 228.0, "regularMarketTime": 1755820800},
				"timestamp": [],
				"indicators": {"quote": [{}]}
			}],
			"error": null
		}
	}`))

	quote, err := client.Quote(context.Background(), "TEST")
	require.NoError(t, err)

	assert.InDelta(t, 230.5, quote.Price, 1e-9)
	require.NotNil(t, quote.Change)
	assert.InDelta(t, 2.5, *quote.Change, 1e-9)
	require.NotNil(t, quote.ChangePercent)
	assert.InDelta(t, 2.5/228.0*100, *quote.ChangePercent, 1e-9)
}

func TestClient_Quote_VendorError(t *testing.T) {
	client := testClient(t, jsonHandler(`{
		"chart": {"result": [], "error": {"code": "Not Found", "description": "No data found"}}
	}`))

	_, err := client.Quote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestClient_Candles_SkipsNullBars(t *testing.T) {
	// Yahoo pads market holidays with null rows
	client := testClient(t, jsonHandler(`{
		"chart": {
			"result": [{
				"meta": {"regularMarketPrice": 102.5},
				"timestamp": [1755648000, 1755734400, 1755820800],
				"indicators": {"quote": [{
					"open":   [100, null, 102],
					"high":   [101, null, 103],
					"low":    [99, null, 101],
					"close":  [100.5, null, 102.5],
					"volume": [1000, null, 1200]
				}]}
			}],
			"error": null
		}
	}`))

	series, err := client.Candles(context.Background(), "TEST", 10)
	require.NoError(t, err)

	require.Len(t, series.Bars, 2)
	assert.NoError(t, series.Validate())
	assert.InDelta(t, 100.5, series.Bars[0].Close, 1e-9)
	assert.InDelta(t, 102.5, series.Bars[1].Close, 1e-9)
}

func TestClient_Profile_Scrape(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Test Corp (TEST) Stock Price</title></head>
<body>
  <h1>Test Corp (TEST)</h1>
  <dl>
    <dt>Sector:</dt><dd>Technology</dd>
    <dt>Industry:</dt><dd>Consumer Electronics</dd>
  </dl>
</body>
</html>`

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Scraper must identify itself with a browser user agent
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.True(t, strings.HasPrefix(r.URL.Path, "/quote/"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	})

	profile, err := client.Profile(context.Background(), "TEST")
	require.NoError(t, err)

	assert.Equal(t, "Test Corp", profile.Name)
	assert.Equal(t, "Technology", profile.Sector)
	assert.Equal(t, "Consumer Electronics", profile.Industry)
	assert.Nil(t, profile.MarketCap, "market cap is not on the profile page")
}

func TestClient_Profile_UnrecognizablePage(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>captcha</p></body></html>"))
	})

	_, err := client.Profile(context.Background(), "TEST")
	assert.Error(t, err)
}

func TestClient_UnsupportedKinds(t *testing.T) {
	client := &Client{}

	_, err := client.Fundamentals(context.Background(), "TEST")
	assert.ErrorIs(t, err, contracts.ErrNotSupported)
	_, err = client.News(context.Background(), "TEST", 5)
	assert.ErrorIs(t, err, contracts.ErrNotSupported)

	assert.True(t, client.Supports(contracts.KindQuote))
	assert.False(t, client.Supports(contracts.KindNews))
}
