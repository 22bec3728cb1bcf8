package alphavantage

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/httputil"
	"github.com/wonny/stocklens/pkg/logger"
)

// ProviderName identifies this adapter in provenance records.
const ProviderName = "alpha_vantage"

// Client handles communication with the Alpha Vantage API.
// SSOT: Alpha Vantage calls are made from this package only.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new Alpha Vantage client.
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

// Supports reports adapter capability. Alpha Vantage serves every data kind.
func (c *Client) Supports(kind contracts.DataKind) bool {
	switch kind {
	case contracts.KindQuote, contracts.KindOHLCV, contracts.KindProfile,
		contracts.KindFundamentals, contracts.KindNews:
		return true
	}
	return false
}

// endpoint builds a query URL for the given function and extra params.
func (c *Client) endpoint(function, symbol string, extra url.Values) string {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	for key, values := range extra {
		for _, v := range values {
			params.Add(key, v)
		}
	}
	return fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
}

// envelope carries the vendor-side failure fields Alpha Vantage mixes
// into otherwise-successful HTTP 200 responses. A populated Note or
// Information field is the vendor's rate-limit/quota signal.
type envelope struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// vendorError converts vendor-reported failures into an error.
func (e *envelope) vendorError() error {
	if e.ErrorMessage != "" {
		return fmt.Errorf("vendor error: %s", e.ErrorMessage)
	}
	if e.Note != "" {
		return fmt.Errorf("vendor rate limit: %s", e.Note)
	}
	if e.Information != "" {
		return fmt.Errorf("vendor quota notice: %s", e.Information)
	}
	return nil
}

// parseFloat converts a vendor string value to *float64.
// Absent, empty, "None" and unparsable values stay nil; the adapter
// never substitutes a default.
func parseFloat(raw string) *float64 {
	trimmed := strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if trimmed == "" || trimmed == "None" || trimmed == "-" || trimmed == "null" {
		return nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &value
}

// requireFloat converts a vendor string that must be present.
func requireFloat(field, raw string) (float64, error) {
	value := parseFloat(raw)
	if value == nil {
		return 0, fmt.Errorf("missing or invalid %q field: %q", field, raw)
	}
	return *value, nil
}
