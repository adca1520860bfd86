package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"signal-dashboard/internal/api"
	"signal-dashboard/internal/app"
	"signal-dashboard/observability"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, os.Stdout)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			metrics := observability.InitMetrics()
			application := app.New(cfg, metrics)
			application.Startup(cmd.Context())

			handler := api.NewHandler(application, cfg)
			server := &http.Server{
				Addr:         cfg.HTTP.Addr,
				Handler:      api.NewRouter(handler, cfg, api.WithRouterMetrics(metrics, nil)),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				observability.Info("starting dashboard server", "addr", cfg.HTTP.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				observability.Error("dashboard server failed", "error", err)
				return err
			case <-quit:
			}

			observability.Info("shutting down dashboard server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				observability.Error("dashboard server forced to shutdown", "error", err)
				return err
			}
			application.Shutdown(shutdownCtx)
			observability.Info("dashboard server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	return cmd
}
