package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

// Sections is the structured narrative layered on top of a report.
// Every claim in it must be grounded in the report's computed numbers;
// the model is never the source of any figure.
type Sections struct {
	ExecutiveSummary string   `json:"executive_summary"`
	TechnicalView    string   `json:"technical_view"`
	ValuationView    string   `json:"valuation_view"`
	RiskAssessment   string   `json:"risk_assessment"`
	FinalView        string   `json:"final_view"`
	Confidence       float64  `json:"confidence"`
	KeyDrivers       []string `json:"key_drivers"`
	BearCase         string   `json:"bear_case"`
	BullCase         string   `json:"bull_case"`
	Assumptions      []string `json:"assumptions"`
}

// Engine generates narrative sections from an assembled report via the
// Anthropic API, with a deterministic fallback when the model response
// is missing or malformed. The report math never depends on it.
type Engine struct {
	client    anthropic.Client
	model     string
	maxTokens int
	enabled   bool
	logger    *logger.Logger
}

// NewEngine creates a narrative engine. Without an API key the engine
// stays disabled and every request takes the deterministic path.
func NewEngine(cfg config.ClaudeConfig, log *logger.Logger) *Engine {
	engine := &Engine{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    log,
	}
	if cfg.APIKey != "" {
		engine.client = anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
		engine.enabled = true
	}
	return engine
}

// Enabled reports whether model-backed narrative generation is configured.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// BuildSections generates narrative sections for a report. Any model
// failure, including malformed JSON, degrades to the deterministic
// fallback instead of failing the request.
func (e *Engine) BuildSections(ctx context.Context, rpt *contracts.Report) *Sections {
	if !e.enabled {
		return fallbackSections(rpt, "narrative model not configured")
	}

	prompt, err := buildPrompt(rpt)
	if err != nil {
		e.logger.WithError(err).Warn("Narrative prompt build failed, using deterministic sections")
		return fallbackSections(rpt, "prompt construction failed")
	}

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(e.model),
		MaxTokens:   int64(e.maxTokens),
		Temperature: anthropic.Float(0.1),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		e.logger.WithError(err).Warn("Narrative model call failed, using deterministic sections")
		return fallbackSections(rpt, "model request failed")
	}

	var builder strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	sections, err := parseSections(builder.String())
	if err != nil {
		e.logger.WithError(err).Warn("Narrative response parse failed, using deterministic sections")
		return fallbackSections(rpt, "model response was not valid JSON")
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol": rpt.Symbol,
		"model":  e.model,
	}).Debug("Generated narrative sections")

	return sections
}

// buildPrompt creates the strict JSON-only prompt over the computed
// report. The model receives the numbers; it may not invent any.
func buildPrompt(rpt *contracts.Report) (string, error) {
	payload, err := json.Marshal(rpt)
	if err != nil {
		return "", fmt.Errorf("report serialization failed: %w", err)
	}

	return "You are an institutional equity research analyst.\n" +
		"Rules:\n" +
		"1) Use ONLY the provided report data.\n" +
		"2) Do not invent numbers or facts.\n" +
		"3) If a metric is marked not computable, explicitly mention the data limitation.\n" +
		"4) Return STRICT JSON only with keys:\n" +
		"executive_summary,technical_view,valuation_view,risk_assessment," +
		"final_view,confidence,key_drivers,bear_case,bull_case,assumptions\n\n" +
		"report=" + string(payload) + "\n", nil
}

// parseSections decodes the model output, tolerating a markdown fence
// around the JSON body.
func parseSections(raw string) (*Sections, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if trimmed == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var sections Sections
	if err := json.Unmarshal([]byte(trimmed), &sections); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}
	if sections.ExecutiveSummary == "" {
		return nil, fmt.Errorf("model response is missing the executive summary")
	}
	return &sections, nil
}

// fallbackSections builds deterministic narrative directly from the
// computed report, so every transport surface keeps working without
// the model.
func fallbackSections(rpt *contracts.Report, reason string) *Sections {
	sections := &Sections{
		ExecutiveSummary: fmt.Sprintf("Deterministic analysis for %s generated without model narrative.", rpt.Symbol),
		TechnicalView:    "Technical view inferred from computed indicators only.",
		ValuationView:    "Valuation view inferred from computed fundamental metrics only.",
		RiskAssessment:   "Risk view inferred from volatility and data coverage.",
		FinalView:        "Use the composite score and signal output for decision support.",
		Confidence:       35,
		KeyDrivers:       []string{"Composite score", "Technical indicators", "Fundamental metrics"},
		BearCase:         "Macro slowdown and earnings compression may weaken the thesis.",
		BullCase:         "Execution upside and favorable valuation rerating may improve returns.",
		Assumptions:      []string{"Deterministic fallback path was used: " + reason + "."},
	}

	if rpt.Score != nil {
		sections.ExecutiveSummary = fmt.Sprintf(
			"Deterministic analysis for %s: composite score %.1f (%s) at %.0f%% data confidence.",
			rpt.Symbol, rpt.Score.Score, rpt.Score.Signal, rpt.Score.Confidence*100,
		)
		sections.FinalView = fmt.Sprintf("Signal %s from the weighted composite; review component scores before acting.", rpt.Score.Signal)
		sections.Confidence = clampConfidence(rpt.Score.Score)
	}
	if rpt.Indicators != nil && rpt.Indicators.RSI14.Computable {
		sections.TechnicalView = fmt.Sprintf("RSI(14) at %.1f over %d bars; see indicator set for moving averages and MACD.",
			rpt.Indicators.RSI14.Value, rpt.Indicators.BarCount)
	}
	if len(rpt.Warnings) > 0 {
		sections.Assumptions = append(sections.Assumptions, rpt.Warnings...)
	}
	return sections
}

// clampConfidence bounds fallback confidence to [35, 85], mirroring the
// conservatism of a narrative produced without model judgment.
func clampConfidence(score float64) float64 {
	if score < 35 {
		return 35
	}
	if score > 85 {
		return 85
	}
	return score
}
