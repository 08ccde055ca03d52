// Package mcp provides an MCP (Model Context Protocol) server for coheron.
package mcp

import (
	"context"
	"errors"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Neil-Crago/coheron/internal/config"
	"github.com/Neil-Crago/coheron/internal/ratelimit"
	"github.com/Neil-Crago/coheron/internal/wavelet"
)

// Server wraps the MCP SDK server and exposes coheron simulations,
// fusion and spectral analysis as tools.
type Server struct {
	server       *sdk.Server
	base         *config.CoheronConfig
	logger       *zap.Logger
	wavelets     *wavelet.Service
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string                // Server name (e.g., "coheron")
	Version string                // Server version
	Base    *config.CoheronConfig // Defaults tool inputs are layered over
	Logger  *zap.Logger
}

// NewServer creates a new MCP server with coheron tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil || cfg.Base == nil {
		return nil, errors.New("mcp server requires a base configuration")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		base:         cfg.Base,
		logger:       logger,
		wavelets:     wavelet.NewService(logger),
		toolLimiters: ratelimit.NewToolLimiters(),
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolSimulate,
		Description: "Run one belief/field simulation and return its trajectory summary, final posterior and couplings",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolEnsemble,
		Description: "Run several independently seeded simulations concurrently and fuse their final beliefs",
	}, s.handleEnsemble)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolFuse,
		Description: "Fuse Gaussian, polynomial or Dirichlet belief snapshots into one",
	}, s.handleFuse)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolAnalyze,
		Description: "Score wavelet bases on a signal, pick the most compact one and optionally denoise it",
	}, s.handleAnalyze)
}
