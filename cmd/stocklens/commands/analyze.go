package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/stocklens/internal/report"
	"github.com/wonny/stocklens/pkg/config"
	"github.com/wonny/stocklens/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Run the analysis pipeline for one symbol",
	Long: `Run the full analysis pipeline for one symbol and print the
report as JSON.

Example:
  go run ./cmd/stocklens analyze AAPL
  go run ./cmd/stocklens analyze MSFT --sections quote,score
  go run ./cmd/stocklens analyze NVDA --narrative`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeSections  []string
	analyzeDays      int
	analyzeNarrative bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVar(&analyzeSections, "sections", nil,
		"report sections to include: "+strings.Join(report.AllSections(), ", "))
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "trading days of price history (default 400)")
	analyzeCmd.Flags().BoolVar(&analyzeNarrative, "narrative", false, "include narrative sections")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Wire the analysis pipeline
	p := buildPipeline(cfg, log)

	for _, section := range analyzeSections {
		if !report.ValidSection(section) {
			return fmt.Errorf("unknown section %q (valid: %s)", section, strings.Join(report.AllSections(), ", "))
		}
	}

	// 4. Assemble the report
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout*10)
	defer cancel()

	rpt, err := p.assembler.Assemble(ctx, symbol, report.Options{
		Sections:     analyzeSections,
		LookbackDays: analyzeDays,
	})
	if err != nil {
		return fmt.Errorf("analyze %s: %w", symbol, err)
	}

	output := map[string]interface{}{"report": rpt}
	if analyzeNarrative {
		output["narrative"] = p.narrative.BuildSections(ctx, rpt)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
