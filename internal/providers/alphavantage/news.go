package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/stocklens/internal/contracts"
)

// newsResponse mirrors the NEWS_SENTIMENT payload.
type newsResponse struct {
	envelope
	Feed []newsFeedEntry `json:"feed"`
}

type newsFeedEntry struct {
	Title          string `json:"title"`
	Source         string `json:"source"`
	URL            string `json:"url"`
	TimePublished  string `json:"time_published"` // 20240115T123000
	SentimentScore string `json:"overall_sentiment_score"`
	SentimentLabel string `json:"overall_sentiment_label"`
}

// News fetches recent headlines with vendor sentiment scores.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]contracts.NewsItem, error) {
	extra := url.Values{}
	extra.Set("tickers", symbol)

	var payload newsResponse
	if err := c.httpClient.GetJSON(ctx, c.endpoint("NEWS_SENTIMENT", symbol, extra), &payload); err != nil {
		return nil, fmt.Errorf("news sentiment request failed: %w", err)
	}
	if err := payload.vendorError(); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(payload.Feed) {
		limit = len(payload.Feed)
	}

	items := make([]contracts.NewsItem, 0, limit)
	for _, entry := range payload.Feed[:limit] {
		if entry.Title == "" {
			continue
		}
		item := contracts.NewsItem{
			Headline:       entry.Title,
			Source:         entry.Source,
			URL:            entry.URL,
			Sentiment:      parseFloat(entry.SentimentScore),
			SentimentLabel: entry.SentimentLabel,
		}
		if published, err := time.Parse("20060102T150405", entry.TimePublished); err == nil {
			item.PublishedAt = published.UTC()
		}
		items = append(items, item)
	}

	return items, nil
}
