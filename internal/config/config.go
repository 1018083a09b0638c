package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/chart"
)

type Config struct {
	Port string

	// Auth for /api/*; empty disables it.
	APIKey string

	// Batch input and output
	InputDir    string
	OutputDir   string
	FailFast    bool
	LayoutsFile string

	// Charts, in inches
	ChartWidthIn  float64
	ChartHeightIn float64
	ChartKind     string

	// Exports
	ExportCSV  bool
	ExportXLSX bool
	ExportHTML bool

	// Upload limits
	MaxUploadBytes int64

	// Server result retention
	ResultTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("BUDGET_API_KEY"),

		InputDir:    envOr("BUDGET_INPUT_DIR", "/data"),
		OutputDir:   envOr("BUDGET_OUTPUT_DIR", "."),
		FailFast:    envBool("BUDGET_FAIL_FAST", false),
		LayoutsFile: os.Getenv("BUDGET_LAYOUTS_FILE"),

		ChartWidthIn:  envFloat("BUDGET_CHART_WIDTH_IN", chart.DefaultWidth),
		ChartHeightIn: envFloat("BUDGET_CHART_HEIGHT_IN", chart.DefaultHeight),
		ChartKind:     envOr("BUDGET_CHART_KIND", string(chart.KindBarH)),

		ExportCSV:  envBool("BUDGET_EXPORT_CSV", false),
		ExportXLSX: envBool("BUDGET_EXPORT_XLSX", false),
		ExportHTML: envBool("BUDGET_EXPORT_HTML", false),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		ResultTTL: envDuration("RESULT_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		LogLevel: envOr("BUDGET_LOG_LEVEL", "info"),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("BUDGET_INPUT_DIR is required")
	}
	if c.ChartWidthIn <= 0 || c.ChartHeightIn <= 0 {
		return fmt.Errorf("chart size must be positive, got %gx%g", c.ChartWidthIn, c.ChartHeightIn)
	}
	if _, err := chart.ParseKind(c.ChartKind); err != nil {
		return fmt.Errorf("BUDGET_CHART_KIND: %w", err)
	}
	if c.LayoutsFile != "" {
		if _, err := os.Stat(c.LayoutsFile); err != nil {
			return fmt.Errorf("BUDGET_LAYOUTS_FILE: %w", err)
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("BUDGET_LOG_LEVEL: %w", err)
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
