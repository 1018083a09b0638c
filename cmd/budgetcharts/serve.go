package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/api"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/config"
	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/pipeline"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			proc, err := newProcessor(cfg, log, reg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := pipeline.NewStore(cfg.ResultTTL)
			go store.RunJanitor(ctx, 5*time.Minute)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      api.NewServer(proc, store, reg, log, cfg),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				<-ctx.Done()
				log.Info("shutting down...")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting budgetcharts", "port", cfg.Port, "auth", cfg.APIKey != "")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default $PORT or 8090)")
	return cmd
}
