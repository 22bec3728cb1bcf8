package alphavantage

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stocklens/internal/contracts"
)

// globalQuoteResponse mirrors the GLOBAL_QUOTE payload. Alpha Vantage
// keys quote fields with numbered labels.
type globalQuoteResponse struct {
	envelope
	GlobalQuote map[string]string `json:"Global Quote"`
}

// Quote fetches the latest quote snapshot.
func (c *Client) Quote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	var payload globalQuoteResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("GLOBAL_QUOTE", symbol, nil), &payload); err != nil {
		return nil, fmt.Errorf("global quote request failed: %w", err)
	}
	if err := payload.vendorError(); err != nil {
		return nil, err
	}

	price, err := requireFloat("05. price", payload.GlobalQuote["05. price"])
	if err != nil {
		return nil, fmt.Errorf("quote schema validation failed: %w", err)
	}

	asOf := time.Now().UTC()
	if day, err := time.Parse("2006-01-02", payload.GlobalQuote["07. latest trading day"]); err == nil {
		asOf = day
	}

	return &contracts.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        parseFloat(payload.GlobalQuote["09. change"]),
		ChangePercent: parseFloat(payload.GlobalQuote["10. change percent"]),
		Open:          parseFloat(payload.GlobalQuote["02. open"]),
		High:          parseFloat(payload.GlobalQuote["03. high"]),
		Low:           parseFloat(payload.GlobalQuote["04. low"]),
		PrevClose:     parseFloat(payload.GlobalQuote["08. previous close"]),
		AsOf:          asOf,
	}, nil
}
