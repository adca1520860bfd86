// signal-dashboard serves the signals dashboard and queries the signals API from the terminal
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"signal-dashboard/config"
	"signal-dashboard/internal/app"
	"signal-dashboard/observability"
)

var version = "0.1.0"

func main() {
	// A missing .env file is fine, the environment is used as is
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	apiURL  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "signal-dashboard",
		Short: "Dashboard for the stock signals API",
		Long: `signal-dashboard renders the stock signals API as a web dashboard and
prints the same data as JSON from the command line.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Signals API base URL (overrides SIGNALS_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(stockCmd(opts))
	rootCmd.AddCommand(topCmd(opts))
	rootCmd.AddCommand(marketCmd(opts))

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "signal-dashboard version %s\n", version)
		},
	}
}

// loadConfig reads the environment, applies flag overrides and configures logging.
// Logs go to logOut so query commands keep stdout for JSON.
func loadConfig(opts *rootOptions, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.apiURL != "" {
		cfg.API.RawBaseURL = opts.apiURL
	}

	level := observability.ParseLevel(cfg.Log.Level)
	if opts.verbose {
		level = observability.ParseLevel("debug")
	}
	observability.InitLoggerTo(logOut, cfg.IsProductionLogging(), level)

	return cfg, nil
}

// newQueryApp builds an app for a one-shot command with its own metrics registry
func newQueryApp(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	cfg, err := loadConfig(opts, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	application := app.New(cfg, observability.NewMetrics(prometheus.NewRegistry()))
	application.Startup(cmd.Context())
	return application, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
