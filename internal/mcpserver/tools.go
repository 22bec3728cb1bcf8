package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// newQuoteTool returns the get_quote tool definition.
func newQuoteTool() mcp.Tool {
	return mcp.NewTool("get_quote",
		mcp.WithDescription("Get the current price snapshot for a stock symbol, with provider provenance"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL"),
		),
	)
}

// newOHLCVTool returns the get_ohlcv tool definition.
func newOHLCVTool() mcp.Tool {
	return mcp.NewTool("get_ohlcv",
		mcp.WithDescription("Get daily OHLCV price history for a stock symbol, oldest bar first"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL"),
		),
		mcp.WithNumber("days",
			mcp.Description("Trading days of history to return (default: 100)"),
		),
	)
}

// newTechnicalsTool returns the get_technicals tool definition.
func newTechnicalsTool() mcp.Tool {
	return mcp.NewTool("get_technicals",
		mcp.WithDescription("Compute technical indicators (SMA, EMA, RSI, MACD, Bollinger, volatility) from daily price history. Indicators with insufficient history are tagged not computable."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL"),
		),
		mcp.WithNumber("days",
			mcp.Description("Trading days of history to analyze (default: 400)"),
		),
	)
}

// newFundamentalsTool returns the get_fundamentals tool definition.
func newFundamentalsTool() mcp.Tool {
	return mcp.NewTool("get_fundamentals",
		mcp.WithDescription("Get reported fundamentals by fiscal period plus derived metrics (P/E, P/S, debt/equity, growth, margins). Ratios with undefined denominators are tagged not computable."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL"),
		),
	)
}

// newNewsSentimentTool returns the get_news_sentiment tool definition.
func newNewsSentimentTool() mcp.Tool {
	return mcp.NewTool("get_news_sentiment",
		mcp.WithDescription("Get recent headlines and the aggregated vendor sentiment polarity for a stock symbol"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum headlines to include (default: 20, max: 50)"),
		),
	)
}

// newAnalyzeTool returns the analyze_stock tool definition.
func newAnalyzeTool() mcp.Tool {
	return mcp.NewTool("analyze_stock",
		mcp.WithDescription("Run the full deterministic analysis pipeline: quote, indicators, fundamental metrics, news sentiment and the weighted composite score with signal and confidence"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL"),
		),
	)
}

// newReportTool returns the stock_report tool definition.
func newReportTool() mcp.Tool {
	return mcp.NewTool("stock_report",
		mcp.WithDescription("Build a full analysis report with structured narrative sections layered on the computed numbers"),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol, e.g. AAPL"),
		),
		mcp.WithArray("sections",
			mcp.WithStringItems(),
			mcp.Description("Report sections to include: quote, profile, technicals, fundamentals, news, score (default: all)"),
		),
	)
}
