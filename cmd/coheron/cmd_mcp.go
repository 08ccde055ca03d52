package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Expose coheron as a Model Context Protocol server on stdin/stdout.

Tools:
  coheron_simulate   Run one simulation
  coheron_ensemble   Run and fuse several seeded simulations
  coheron_fuse       Fuse belief snapshots
  coheron_analyze    Score wavelet bases on a signal

Tool inputs are layered over the effective configuration. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg)
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			defer startTelemetry(ctx, cfg, logger)()

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "coheron",
				Version: version,
				Base:    cfg,
				Logger:  logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			logger.Info("mcp server starting", zap.String("version", version))
			return server.Run(ctx)
		},
	}
}
