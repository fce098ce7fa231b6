// Package main is the entry point for the pollsctl CLI.
//
// Usage:
//
//	pollsctl polls list --skip 0 --limit 10     # Fetch one page of polls
//	pollsctl polls all --batch-size 5           # Drain every poll
//	pollsctl polls all --export-redis host:6379 # Drain and store a snapshot
//	pollsctl polls snapshot --redis host:6379   # Show the stored snapshot
//	pollsctl register -u john_doe -p secret     # Register a user
//	pollsctl version                            # Show version info
//
// Any command accepts --metrics-file to dump Prometheus metrics for the
// node_exporter textfile collector.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Sternrassler/polls-client/internal/config"
	"github.com/Sternrassler/polls-client/pkg/client"
	"github.com/Sternrassler/polls-client/pkg/logging"
	"github.com/Sternrassler/polls-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configFile  string
	baseURL     string
	logLevel    string
	metricsFile string
}

// app is the state built from configuration before a command runs.
type app struct {
	opts   rootOptions
	cfg    *config.Config
	client *client.Client
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pollsctl",
		Short: "Command-line client for the polls API",
		Long: `pollsctl talks to a polls API server.

It can fetch a single page of polls, drain the whole collection page by
page, export the drained collection to Redis, and register users.

Configuration is read from an optional YAML file (--config) and POLLS_*
environment variables; flags override both.`,
		SilenceUsage: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.writeMetrics()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.opts.configFile, "config", "c", "", "path to config file")
	flags.StringVar(&a.opts.baseURL, "base-url", "", "polls API base URL (default http://localhost:8000)")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	flags.StringVar(&a.opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the command (textfile collector format)")

	rootCmd.AddCommand(newVersionCmd(), newPollsCmd(a), newRegisterCmd(a))

	return rootCmd
}

// setup loads configuration, configures logging, and creates the API client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.opts.configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if a.opts.baseURL != "" {
		cfg.BaseURL = a.opts.baseURL
	}
	if a.opts.logLevel != "" {
		cfg.Log.Level = a.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}
	a.logger = logging.NewLogger("pollsctl")

	apiClient, err := client.New(cfg.ClientConfig())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.client = apiClient
	return nil
}

// writeMetrics dumps the gathered metrics when --metrics-file is set.
func (a *app) writeMetrics() error {
	if a.opts.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.opts.metricsFile, metrics.Gatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// describe prefixes err by kind the way users expect to read it.
func describe(err error) error {
	switch client.KindOf(err) {
	case client.KindTransport:
		return fmt.Errorf("network error: %w", err)
	case client.KindNotFound, client.KindValidation, client.KindHTTP:
		return fmt.Errorf("API error: %w", err)
	default:
		return err
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this pollsctl binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pollsctl %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var validationErr *client.ValidationError
		if errors.As(err, &validationErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
