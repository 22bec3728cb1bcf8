package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/stocklens/internal/contracts"
	"github.com/wonny/stocklens/internal/narrative"
	"github.com/wonny/stocklens/internal/providers"
	"github.com/wonny/stocklens/internal/report"
	"github.com/wonny/stocklens/pkg/logger"
)

// ReportHandler handles analysis API endpoints
// SSOT: analysis API handlers live in this struct only
type ReportHandler struct {
	router    *providers.Router
	assembler *report.Assembler
	narrative *narrative.Engine
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	router *providers.Router,
	assembler *report.Assembler,
	narrativeEngine *narrative.Engine,
	log *logger.Logger,
) *ReportHandler {
	return &ReportHandler{
		router:    router,
		assembler: assembler,
		narrative: narrativeEngine,
		logger:    log,
	}
}

// GetQuote returns the current price snapshot
// GET /api/quote/{symbol}
func (h *ReportHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol, ok := symbolFrom(w, r)
	if !ok {
		return
	}

	routed, err := h.router.Quote(ctx, symbol)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quote")
		respondError(w, http.StatusBadGateway, "Quote unavailable from all providers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"quote":    routed.Data,
		"provider": routed.Provider,
		"warning":  routed.Warning,
	})
}

// GetReport runs the analysis pipeline and returns the report
// GET /api/report/{symbol}?sections=quote,score&narrative=true
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol, ok := symbolFrom(w, r)
	if !ok {
		return
	}

	var sections []string
	if raw := r.URL.Query().Get("sections"); raw != "" {
		for _, section := range strings.Split(raw, ",") {
			section = strings.TrimSpace(section)
			if section == "" {
				continue
			}
			if !report.ValidSection(section) {
				respondError(w, http.StatusBadRequest,
					"Invalid section (valid: "+strings.Join(report.AllSections(), ", ")+")")
				return
			}
			sections = append(sections, section)
		}
	}

	opts := report.Options{Sections: sections}
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid 'days' parameter (expected positive integer)")
			return
		}
		opts.LookbackDays = days
	}

	rpt, err := h.assembler.Assemble(ctx, symbol, opts)
	if err != nil {
		h.logger.WithError(err).Error("Failed to assemble report")
		switch {
		case errors.Is(err, contracts.ErrInsufficientData):
			respondError(w, http.StatusUnprocessableEntity, "Insufficient computable data to score this symbol")
		case contracts.IsDataUnavailable(err):
			respondError(w, http.StatusBadGateway, "Required data unavailable from all providers")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to assemble report")
		}
		return
	}

	response := map[string]interface{}{"report": rpt}
	if r.URL.Query().Get("narrative") == "true" {
		response["narrative"] = h.narrative.BuildSections(ctx, rpt)
	}

	respondJSON(w, http.StatusOK, response)
}

// GetProviders returns the fallback chain for every data kind
// GET /api/providers
func (h *ReportHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	kinds := []contracts.DataKind{
		contracts.KindQuote,
		contracts.KindOHLCV,
		contracts.KindProfile,
		contracts.KindFundamentals,
		contracts.KindNews,
	}

	chains := make(map[contracts.DataKind][]string, len(kinds))
	for _, kind := range kinds {
		names := []string{}
		for _, p := range h.router.Chain(kind) {
			names = append(names, p.Name())
		}
		chains[kind] = names
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"chains": chains,
	})
}

// symbolFrom extracts and normalizes the symbol path variable.
func symbolFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "Symbol is required")
		return "", false
	}
	return symbol, true
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
