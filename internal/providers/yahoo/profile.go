package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/stocklens/internal/contracts"
)

// Profile scrapes company reference data from the Yahoo Finance
// profile page. Only fields actually present in the page are filled;
// market cap and share counts are not exposed there and stay nil.
func (c *Client) Profile(ctx context.Context, symbol string) (*contracts.CompanyProfile, error) {
	pageURL := fmt.Sprintf("%s/quote/%s/profile", c.pageBaseURL, url.PathEscape(symbol))

	resp, err := c.httpClient.GetWithHeaders(ctx, pageURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("profile page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("profile page parse failed: %w", err)
	}

	profile := &contracts.CompanyProfile{Symbol: symbol}

	// Page title carries "Company Name (SYMBOL) ..."
	if title := doc.Find("h1").First().Text(); title != "" {
		if idx := strings.Index(title, "("); idx > 0 {
			profile.Name = strings.TrimSpace(title[:idx])
		} else {
			profile.Name = strings.TrimSpace(title)
		}
	}

	// Sector/industry are label-value pairs in the company overview block
	doc.Find("dt, dd, span, a").Each(func(_ int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.Text())
		switch label {
		case "Sector:", "Sector":
			if value := labelValue(sel); value != "" && profile.Sector == "" {
				profile.Sector = value
			}
		case "Industry:", "Industry":
			if value := labelValue(sel); value != "" && profile.Industry == "" {
				profile.Industry = value
			}
		}
	})

	if profile.Name == "" && profile.Sector == "" && profile.Industry == "" {
		return nil, fmt.Errorf("profile page schema validation failed: no recognizable fields")
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"name":   profile.Name,
		"sector": profile.Sector,
	}).Debug("Scraped Yahoo profile")

	return profile, nil
}

// labelValue returns the text of the element following a label node.
func labelValue(sel *goquery.Selection) string {
	value := strings.TrimSpace(sel.Next().Text())
	if value == "" {
		value = strings.TrimSpace(sel.Parent().Next().Text())
	}
	return value
}
