package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-mcp-server/internal/cache"
	"github.com/pgx-risk-mcp-server/internal/config"
	"github.com/pgx-risk-mcp-server/internal/domain"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/internal/service"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	httpShutdownTimeout = 10 * time.Second
)

// Server represents the pharmacogenomics MCP server backed by the full configuration
type Server struct {
	config    *config.Manager
	mcpServer *mcp.Server
	handlers  *toolHandlers
	cache     *cache.ReportCache
	logger    *logrus.Logger
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server)

// WithServerLogger sets a custom logger.
func WithServerLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP server instance
func NewServer(configManager *config.Manager, opts ...ServerOption) (*Server, error) {
	cfg := configManager.GetConfig()

	server := &Server{config: configManager}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		logging := cfg.Logging
		if cfg.MCP.TransportType != TransportHTTP {
			logging.Output = "stderr"
		}
		server.logger = config.NewLogger(logging)
	}

	registry, err := reference.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	reportCache, err := cache.New(cfg.Cache, server.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	server.cache = reportCache

	analyzer := service.NewAnalyzer(server.logger, registry,
		service.WithLimits(cfg.Analysis.MaxDrugsPerRequest, cfg.Analysis.MaxVCFBytes))

	server.handlers = &toolHandlers{
		analyzer: analyzer,
		cache:    reportCache,
		timeout:  cfg.MCP.RequestTimeout,
		logger:   server.logger,
	}
	server.mcpServer = newMCPServer(cfg.MCP.ServerName, cfg.MCP.ServerVersion, server.handlers)

	server.logger.WithFields(logrus.Fields{
		"reference_version": registry.Version(),
		"redis":             cfg.Cache.RedisURL != "",
	}).Info("MCP server initialized")

	return server, nil
}

// Start starts the MCP server with the configured transport
func (s *Server) Start(ctx context.Context) error {
	mcpConfig := s.config.GetConfig().MCP
	s.logger.WithField("transport_type", mcpConfig.TransportType).Info("Starting pharmacogenomics MCP server...")
	return serve(ctx, s.mcpServer, mcpConfig.TransportType, mcpConfig.HTTPPort, s.logger)
}

// Close releases the report cache.
func (s *Server) Close() error {
	return s.cache.Close()
}

// MCPServer exposes the underlying SDK server, mainly for in-memory transports in tests.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

func newMCPServer(name, version string, handlers *toolHandlers) *mcp.Server {
	if name == "" {
		name = "pgx-risk-mcp-server"
	}
	if version == "" {
		version = "1.0.0"
	}

	server := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)
	handlers.register(server)
	return server
}

// serve runs server on stdio until the client disconnects, or on streamable HTTP until
// ctx is cancelled.
func serve(ctx context.Context, server *mcp.Server, transportType string, port int, logger *logrus.Logger) error {
	switch transportType {
	case "", TransportStdio:
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil

	case TransportHTTP:
		handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
		httpServer := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		logger.WithField("addr", httpServer.Addr).Info("MCP streamable HTTP transport listening")

		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("MCP HTTP transport failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)

	default:
		return fmt.Errorf("%w: unsupported MCP transport %q", domain.ErrInvalidConfig, transportType)
	}
}
