package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/logging"
	"github.com/Neil-Crago/coheron/internal/telemetry"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coheron",
		Short: "Coheron - belief/field control loops",
		Long: `coheron steers an agent through a scalar field using a probabilistic
belief about what it observes.

Each step samples an observation, updates the belief, measures the field's
resonance at the agent's position and synthesizes a control law, optionally
modulated by couplings between semantic domains.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.coheron/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newEnsembleCmd(),
		newFuseCmd(),
		newSpectralCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

// loadConfig resolves the effective configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.CoheronConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

// newLogger writes human-readable logs to stderr so stdout stays parseable.
func newLogger(cfg *config.CoheronConfig) *zap.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}

// startTelemetry enables tracing when an endpoint is configured. Failures are
// logged and tracing stays disabled.
func startTelemetry(ctx context.Context, cfg *config.CoheronConfig, logger *zap.Logger) func() {
	provider, err := telemetry.New(ctx, cfg.Telemetry, version, logger)
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
	}
	return func() {
		_ = provider.Shutdown(context.Background())
	}
}

// signalContext is cancelled on the first interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
