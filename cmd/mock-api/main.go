// Package main runs the fake signals API as a standalone server for local development
// and browser tests.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"signal-dashboard/mockapi"
	"signal-dashboard/observability"
)

func main() {
	_ = godotenv.Load()

	observability.InitLogger(false)

	if err := newRootCmd().Execute(); err != nil {
		observability.Fatal("mock signals API failed", "error", err)
	}
}

func newRootCmd() *cobra.Command {
	var port, fixturesPath string

	cmd := &cobra.Command{
		Use:           "mock-api",
		Short:         "Serve a fake signals API backed by fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := loadFixtures(fixturesPath)
			if err != nil {
				return err
			}
			return run(port, fixtures)
		},
	}

	cmd.Flags().StringVar(&port, "port", envOr("MOCK_API_PORT", "8000"), "port to listen on")
	cmd.Flags().StringVar(&fixturesPath, "fixtures", os.Getenv("MOCK_API_FIXTURES"), "YAML fixtures file (built-in data when empty)")

	return cmd
}

func loadFixtures(path string) (*mockapi.Fixtures, error) {
	if path == "" {
		return mockapi.DefaultFixtures(), nil
	}

	fixtures, err := mockapi.LoadFixtures(path)
	if err != nil {
		return nil, err
	}
	observability.Info("loaded fixtures", "path", path, "stocks", len(fixtures.Stocks))
	return fixtures, nil
}

func run(port string, fixtures *mockapi.Fixtures) error {
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mockapi.NewServer(fixtures),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.Info("starting mock signals API", "port", port, "url", fmt.Sprintf("http://localhost:%s/api/v1", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	observability.Info("shutting down mock signals API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	observability.Info("mock signals API stopped")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
