package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// SSOT: every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Upstream vendors
	AlphaVantage AlphaVantageConfig
	Finnhub      FinnhubConfig
	Yahoo        YahooConfig

	// Outbound HTTP
	RequestTimeout time.Duration

	// Scoring
	Scoring ScoringConfig

	// Narrative (Claude)
	Claude ClaudeConfig

	// Watchlist
	Watch WatchConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// AlphaVantageConfig holds Alpha Vantage API configuration.
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
	// RatePerMinute throttles outbound calls; the free tier allows 5/min.
	RatePerMinute int
}

// FinnhubConfig holds Finnhub API configuration.
type FinnhubConfig struct {
	APIKey        string
	BaseURL       string
	RatePerMinute int
}

// YahooConfig holds Yahoo Finance configuration. Keyless.
type YahooConfig struct {
	ChartBaseURL string
	PageBaseURL  string
}

// ClaudeConfig holds the narrative engine configuration.
// Narrative generation is optional; it only runs when an API key is set.
type ClaudeConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// WatchConfig holds the scheduled watchlist configuration.
type WatchConfig struct {
	Symbols  []string
	Schedule string // cron expression
}

// ScoringConfig is the documented weight/threshold table behind the
// composite score. Weights are flat per scored input; scoring
// renormalizes them over the computable inputs, so they need not sum
// to one (the defaults do).
type ScoringConfig struct {
	// Technical inputs
	WeightRSI   float64
	WeightMACD  float64
	WeightTrend float64

	// Fundamental inputs
	WeightPE            float64
	WeightDebtToEquity  float64
	WeightRevenueGrowth float64
	WeightNetMargin     float64

	// Sentiment input
	WeightSentiment float64

	// Signal thresholds on the [0, 100] composite, inclusive on the
	// lower edge: score >= StrongBuy => strong_buy, >= Buy => buy, etc.
	ThresholdStrongBuy float64
	ThresholdBuy       float64
	ThresholdNeutral   float64
	ThresholdSell      float64
}

// TotalWeight returns the sum of all input weights.
func (s ScoringConfig) TotalWeight() float64 {
	return s.WeightRSI + s.WeightMACD + s.WeightTrend +
		s.WeightPE + s.WeightDebtToEquity + s.WeightRevenueGrowth + s.WeightNetMargin +
		s.WeightSentiment
}

// Load reads configuration from environment variables.
// SSOT: only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		AlphaVantage: AlphaVantageConfig{
			APIKey:        getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL:       getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			RatePerMinute: getEnvAsInt("ALPHA_VANTAGE_RATE_PER_MINUTE", 5),
		},
		Finnhub: FinnhubConfig{
			APIKey:        getEnv("FINNHUB_API_KEY", ""),
			BaseURL:       getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
			RatePerMinute: getEnvAsInt("FINNHUB_RATE_PER_MINUTE", 60),
		},
		Yahoo: YahooConfig{
			ChartBaseURL: getEnv("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com"),
			PageBaseURL:  getEnv("YAHOO_PAGE_BASE_URL", "https://finance.yahoo.com"),
		},

		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "12s"),

		Scoring: ScoringConfig{
			WeightRSI:   getEnvAsFloat("SCORING_WEIGHT_RSI", 0.20),
			WeightMACD:  getEnvAsFloat("SCORING_WEIGHT_MACD", 0.20),
			WeightTrend: getEnvAsFloat("SCORING_WEIGHT_TREND", 0.10),

			WeightPE:            getEnvAsFloat("SCORING_WEIGHT_PE", 0.125),
			WeightDebtToEquity:  getEnvAsFloat("SCORING_WEIGHT_DEBT_EQUITY", 0.075),
			WeightRevenueGrowth: getEnvAsFloat("SCORING_WEIGHT_REVENUE_GROWTH", 0.125),
			WeightNetMargin:     getEnvAsFloat("SCORING_WEIGHT_NET_MARGIN", 0.075),

			WeightSentiment: getEnvAsFloat("SCORING_WEIGHT_SENTIMENT", 0.10),

			ThresholdStrongBuy: getEnvAsFloat("SCORING_THRESHOLD_STRONG_BUY", 80),
			ThresholdBuy:       getEnvAsFloat("SCORING_THRESHOLD_BUY", 60),
			ThresholdNeutral:   getEnvAsFloat("SCORING_THRESHOLD_NEUTRAL", 40),
			ThresholdSell:      getEnvAsFloat("SCORING_THRESHOLD_SELL", 20),
		},

		Claude: ClaudeConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens: getEnvAsInt("CLAUDE_MAX_TOKENS", 1800),
		},

		Watch: WatchConfig{
			Symbols:  getEnvAsList("WATCH_SYMBOLS", nil),
			Schedule: getEnv("WATCH_SCHEDULE", "@every 15m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.RequestTimeout < time.Second {
		return fmt.Errorf("REQUEST_TIMEOUT must be at least 1s")
	}

	s := c.Scoring
	for name, weight := range map[string]float64{
		"SCORING_WEIGHT_RSI":            s.WeightRSI,
		"SCORING_WEIGHT_MACD":           s.WeightMACD,
		"SCORING_WEIGHT_TREND":          s.WeightTrend,
		"SCORING_WEIGHT_PE":             s.WeightPE,
		"SCORING_WEIGHT_DEBT_EQUITY":    s.WeightDebtToEquity,
		"SCORING_WEIGHT_REVENUE_GROWTH": s.WeightRevenueGrowth,
		"SCORING_WEIGHT_NET_MARGIN":     s.WeightNetMargin,
		"SCORING_WEIGHT_SENTIMENT":      s.WeightSentiment,
	} {
		if weight < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if s.TotalWeight() <= 0 {
		return fmt.Errorf("scoring weights must sum to a positive value")
	}
	if !(s.ThresholdStrongBuy > s.ThresholdBuy &&
		s.ThresholdBuy > s.ThresholdNeutral &&
		s.ThresholdNeutral > s.ThresholdSell) {
		return fmt.Errorf("signal thresholds must be strictly descending: strong_buy > buy > neutral > sell")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, strings.ToUpper(trimmed))
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
