package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/config"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	var (
		input, output, pattern string
		failFast               bool
		csv, xlsx, html        bool
	)

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Process every PDF in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			flags := cmd.Flags()
			if len(args) == 1 {
				cfg.InputDir = args[0]
			} else if flags.Changed("input") {
				cfg.InputDir = input
			}
			if flags.Changed("output") {
				cfg.OutputDir = output
			}
			if flags.Changed("fail-fast") {
				cfg.FailFast = failFast
			}
			if flags.Changed("csv") {
				cfg.ExportCSV = csv
			}
			if flags.Changed("xlsx") {
				cfg.ExportXLSX = xlsx
			}
			if flags.Changed("html") {
				cfg.ExportHTML = html
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			proc, err := newProcessor(cfg, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			batch := pipeline.NewBatch(proc, cmd.OutOrStdout(), log)
			batch.Pattern = pattern
			batch.FailFast = cfg.FailFast

			sum, err := batch.Run(ctx, cfg.InputDir)
			if err != nil {
				log.Error("batch aborted", "error", err)
				return err
			}
			if len(sum.Failed) > 0 {
				for _, f := range sum.Failed {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s\n", f)
				}
				return fmt.Errorf("%d of %d documents failed", len(sum.Failed), len(sum.Failed)+sum.Processed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "Input directory (default $BUDGET_INPUT_DIR or /data)")
	f.StringVarP(&output, "output", "o", "", "Output directory for charts and exports (default $BUDGET_OUTPUT_DIR or .)")
	f.StringVar(&pattern, "pattern", pipeline.DefaultPattern, "Glob selecting documents inside the input directory")
	f.BoolVar(&failFast, "fail-fast", false, "Stop at the first document that fails")
	f.BoolVar(&csv, "csv", false, "Also write <name>.csv")
	f.BoolVar(&xlsx, "xlsx", false, "Also write <name>.xlsx")
	f.BoolVar(&html, "html", false, "Also write <name>.html")

	return cmd
}
