package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/wonny/stocklens/internal/indicators"
	"github.com/wonny/stocklens/internal/metrics"
	"github.com/wonny/stocklens/internal/narrative"
	"github.com/wonny/stocklens/internal/providers"
	"github.com/wonny/stocklens/internal/report"
	"github.com/wonny/stocklens/pkg/logger"
)

// Server exposes the analysis pipeline over the Model Context Protocol
// on stdio. The protocol owns stdout, which is why all logging in this
// process goes to stderr.
type Server struct {
	mcp        *server.MCPServer
	router     *providers.Router
	calculator *indicators.Calculator
	metrics    *metrics.Engine
	assembler  *report.Assembler
	narrative  *narrative.Engine
	logger     *logger.Logger
}

// New creates the MCP server and registers every tool.
func New(
	version string,
	router *providers.Router,
	calculator *indicators.Calculator,
	metricsEngine *metrics.Engine,
	assembler *report.Assembler,
	narrativeEngine *narrative.Engine,
	log *logger.Logger,
) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			"stocklens",
			version,
			server.WithToolCapabilities(true),
		),
		router:     router,
		calculator: calculator,
		metrics:    metricsEngine,
		assembler:  assembler,
		narrative:  narrativeEngine,
		logger:     log,
	}

	s.mcp.AddTool(newQuoteTool(), s.handleQuote)
	s.mcp.AddTool(newOHLCVTool(), s.handleOHLCV)
	s.mcp.AddTool(newTechnicalsTool(), s.handleTechnicals)
	s.mcp.AddTool(newFundamentalsTool(), s.handleFundamentals)
	s.mcp.AddTool(newNewsSentimentTool(), s.handleNewsSentiment)
	s.mcp.AddTool(newAnalyzeTool(), s.handleAnalyze)
	s.mcp.AddTool(newReportTool(), s.handleReport)

	return s
}

// ServeStdio serves the protocol over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	s.logger.Info("Serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}
