package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/internal/narrative"
	"github.com/wonny/stocklens/internal/report"
)

const maxNewsLimit = 50

// handleQuote implements the get_quote tool.
func (s *Server) handleQuote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, errResult := requireSymbol(request)
	if errResult != nil {
		return errResult, nil
	}

	routed, err := s.router.Quote(ctx, symbol)
	if err != nil {
		return errorResult("quote unavailable for %s: %v", symbol, err), nil
	}

	return jsonResult(struct {
		Quote    *contracts.Quote `json:"quote"`
		Provider string           `json:"provider"`
		Warning  string           `json:"warning,omitempty"`
	}{routed.Data, routed.Provider, routed.Warning})
}

// handleOHLCV implements the get_ohlcv tool.
func (s *Server) handleOHLCV(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, errResult := requireSymbol(request)
	if errResult != nil {
		return errResult, nil
	}
	days := request.GetInt("days", 100)

	routed, err := s.router.Candles(ctx, symbol, days)
	if err != nil {
		return errorResult("price history unavailable for %s: %v", symbol, err), nil
	}

	return jsonResult(struct {
		Series   *contracts.PriceSeries `json:"series"`
		Provider string                 `json:"provider"`
		Warning  string                 `json:"warning,omitempty"`
	}{routed.Data, routed.Provider, routed.Warning})
}

// handleTechnicals implements the get_technicals tool.
func (s *Server) handleTechnicals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, errResult := requireSymbol(request)
	if errResult != nil {
		return errResult, nil
	}
	days := request.GetInt("days", 400)

	routed, err := s.router.Candles(ctx, symbol, days)
	if err != nil {
		return errorResult("price history unavailable for %s: %v", symbol, err), nil
	}

	return jsonResult(struct {
		Symbol     string                  `json:"symbol"`
		Indicators *contracts.IndicatorSet `json:"indicators"`
		Provider   string                  `json:"provider"`
		Warning    string                  `json:"warning,omitempty"`
	}{symbol, s.calculator.Compute(routed.Data), routed.Provider, routed.Warning})
}

// handleFundamentals implements the get_fundamentals tool.
func (s *Server) handleFundamentals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, errResult := requireSymbol(request)
	if errResult != nil {
		return errResult, nil
	}

	routed, err := s.router.Fundamentals(ctx, symbol)
	if err != nil {
		return errorResult("fundamentals unavailable for %s: %v", symbol, err), nil
	}

	// Quote and profile enrich the derived ratios but are optional here.
	var quote *contracts.Quote
	if q, err := s.router.Quote(ctx, symbol); err == nil {
		quote = q.Data
	}
	var profile *contracts.CompanyProfile
	if p, err := s.router.Profile(ctx, symbol); err == nil {
		profile = p.Data
	}

	return jsonResult(struct {
		Fundamentals *contracts.FundamentalsSet `json:"fundamentals"`
		Metrics      *contracts.MetricsSet      `json:"metrics"`
		Provider     string                     `json:"provider"`
		Warning      string                     `json:"warning,omitempty"`
	}{routed.Data, s.metrics.Compute(routed.Data, quote, profile), routed.Provider, routed.Warning})
}

// handleNewsSentiment implements the get_news_sentiment tool.
func (s *Server) handleNewsSentiment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, errResult := requireSymbol(request)
	if errResult != nil {
		return errResult, nil
	}
	limit := request.GetInt("limit", 20)
	if limit > maxNewsLimit {
		limit = maxNewsLimit
	}

	routed, err := s.router.News(ctx, symbol, limit)
	if err != nil {
		return errorResult("news unavailable for %s: %v", symbol, err), nil
	}

	return jsonResult(struct {
		Summary  *contracts.NewsSentimentSummary `json:"summary"`
		Items    []contracts.NewsItem            `json:"items"`
		Provider string                          `json:"provider"`
		Warning  string                          `json:"warning,omitempty"`
	}{report.SummarizeNews(symbol, routed.Data), routed.Data, routed.Provider, routed.Warning})
}

// handleAnalyze implements the analyze_stock tool.
func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, errResult := requireSymbol(request)
	if errResult != nil {
		return errResult, nil
	}

	rpt, err := s.assembler.Assemble(ctx, symbol, report.Options{})
	if err != nil {
		return errorResult("analysis failed for %s: %v", symbol, err), nil
	}
	return jsonResult(rpt)
}

// handleReport implements the stock_report tool.
func (s *Server) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, errResult := requireSymbol(request)
	if errResult != nil {
		return errResult, nil
	}

	sections := request.GetStringSlice("sections", nil)
	for _, section := range sections {
		if !report.ValidSection(section) {
			return errorResult("unknown report section %q; valid sections: %s",
				section, strings.Join(report.AllSections(), ", ")), nil
		}
	}

	rpt, err := s.assembler.Assemble(ctx, symbol, report.Options{Sections: sections})
	if err != nil {
		return errorResult("report failed for %s: %v", symbol, err), nil
	}

	return jsonResult(struct {
		Report    *contracts.Report   `json:"report"`
		Narrative *narrative.Sections `json:"narrative"`
	}{rpt, s.narrative.BuildSections(ctx, rpt)})
}

// requireSymbol extracts and normalizes the symbol argument.
func requireSymbol(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	symbol, err := request.RequireString("symbol")
	if err != nil || strings.TrimSpace(symbol) == "" {
		return "", errorResult("symbol parameter is required")
	}
	return strings.ToUpper(strings.TrimSpace(symbol)), nil
}

// jsonResult serializes a payload into a single text content block.
func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResult("response serialization failed: %v", err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(string(data)),
		},
	}, nil
}

// errorResult wraps an error message as tool output; protocol-level
// errors are reserved for transport failures.
func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.NewTextContent(fmt.Sprintf(format, args...)),
		},
	}
}
