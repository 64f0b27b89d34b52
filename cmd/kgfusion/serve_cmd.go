package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kogsector/kgfusion/config"
)

// newServeCmd builds the long-running HTTP server subcommand, following the
// teacher's cmd/semspec serve command: load config, build an App, mount
// handlers on a ServeMux, and run http.Server with signal-driven graceful
// shutdown.
func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ingestion and query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger := newLogger(config.Defaults())
			cfg, err := config.NewLoader(logger).Load(*configPath)
			if err != nil {
				return err
			}
			logger = newLogger(cfg)

			app, err := NewApp(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer app.Close(context.Background())

			mux := http.NewServeMux()
			app.Server().Register(mux)
			mux.Handle("/metrics", promhttp.Handler())

			srv := &http.Server{
				Addr:         cfg.Host + ":" + cfg.Port,
				Handler:      mux,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
					return
				}
				errCh <- nil
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				return err
			}
		},
	}
}
