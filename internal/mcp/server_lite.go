// Package mcp provides the MCP server implementation.
// This file contains the lightweight server configured from environment variables only.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/cache"
	litecfg "github.com/pgx-risk-mcp-server/internal/config"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/internal/service"
)

// LiteServer is a lightweight MCP server that needs no config file.
// It uses the in-memory report cache, with Redis only when PGX_REDIS_URL is set.
type LiteServer struct {
	config    *litecfg.LiteConfig
	mcpServer *mcp.Server
	cache     *cache.ReportCache
	logger    *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{
		config: cfg,
		logger: litecfg.NewLogger(cfg.LoggingConfig()),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	registry, err := reference.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	reportCache, err := cache.New(cfg.CacheConfig(), server.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	server.cache = reportCache

	limits := cfg.AnalysisConfig()
	analyzer := service.NewAnalyzer(server.logger, registry,
		service.WithLimits(limits.MaxDrugsPerRequest, limits.MaxVCFBytes))

	handlers := &toolHandlers{
		analyzer: analyzer,
		cache:    reportCache,
		logger:   server.logger,
	}
	server.mcpServer = newMCPServer("pgx-risk-mcp-server-lite", "1.0.0", handlers)

	server.logger.WithFields(logrus.Fields{
		"reference_version": registry.Version(),
		"cache_items":       cfg.CacheMaxItems,
	}).Info("Lite server initialized successfully")
	return server, nil
}

// Start starts the lite MCP server.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.WithField("transport_type", s.config.Transport).Info("Starting pharmacogenomics MCP server (Lite)...")
	return serve(ctx, s.mcpServer, s.config.Transport, s.config.HTTPPort, s.logger)
}

// Close cleans up server resources.
func (s *LiteServer) Close() error {
	if err := s.cache.Close(); err != nil {
		s.logger.WithError(err).Error("Failed to close report cache")
	}
	return nil
}

// GetCache returns the report cache for external access.
func (s *LiteServer) GetCache() *cache.ReportCache {
	return s.cache
}

// MCPServer exposes the underlying SDK server.
func (s *LiteServer) MCPServer() *mcp.Server {
	return s.mcpServer
}
