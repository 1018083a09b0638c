// Command budgetcharts extracts the expenditures and revenues summary
// tables from budget documents, prints them with their totals and draws a
// bar chart per table. The serve subcommand exposes the same extraction
// over HTTP.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/chart"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/config"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/extract"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/metrics"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/parser"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "budgetcharts",
		Short: "Extract budget summary tables and chart them",
		Long: `budgetcharts reads budget documents, extracts the expenditures by agency
and revenue sources tables, prints them with their totals and renders a
horizontal bar chart per table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file with configuration overrides")

	root.AddCommand(newRunCmd(), newServeCmd())
	return root
}

// newLogger writes JSON logs to stderr; stdout carries the report.
func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// newProcessor builds the document processor from configuration and
// registers its metrics with reg.
func newProcessor(cfg config.Config, log *slog.Logger, reg prometheus.Registerer) (*pipeline.Processor, error) {
	layouts := extract.DefaultLayouts()
	if cfg.LayoutsFile != "" {
		var err error
		if layouts, err = extract.LoadLayouts(cfg.LayoutsFile); err != nil {
			return nil, err
		}
		log.Info("loaded layouts", "file", cfg.LayoutsFile, "count", len(layouts))
	}
	kind, err := chart.ParseKind(cfg.ChartKind)
	if err != nil {
		return nil, err
	}

	return pipeline.NewProcessor(pipeline.Options{
		Layouts:     layouts,
		OutputDir:   cfg.OutputDir,
		ChartKind:   kind,
		ChartWidth:  vg.Length(cfg.ChartWidthIn) * vg.Inch,
		ChartHeight: vg.Length(cfg.ChartHeightIn) * vg.Inch,
		ExportCSV:   cfg.ExportCSV,
		ExportXLSX:  cfg.ExportXLSX,
		ExportHTML:  cfg.ExportHTML,
		Parser:      parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, log, metrics.New(reg)), nil
}
