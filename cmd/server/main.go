package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pgx-risk-mcp-server/internal/api"
	"github.com/pgx-risk-mcp-server/internal/cache"
	"github.com/pgx-risk-mcp-server/internal/config"
	"github.com/pgx-risk-mcp-server/internal/reference"
	"github.com/pgx-risk-mcp-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(cfg.Logging)

	registry, err := reference.Default()
	if err != nil {
		log.Fatalf("Failed to load reference data: %v", err)
	}

	reportCache, err := cache.New(cfg.Cache, logger)
	if err != nil {
		log.Fatalf("Failed to create report cache: %v", err)
	}
	defer reportCache.Close()

	analyzer := service.NewAnalyzer(logger, registry,
		service.WithLimits(cfg.Analysis.MaxDrugsPerRequest, cfg.Analysis.MaxVCFBytes))

	log.Printf("Starting pharmacogenomic risk API on %s:%d (reference %s)", cfg.Server.Host, cfg.Server.Port, registry.Version())

	// Create server
	server := api.NewServer(configManager, analyzer, logger, api.WithReportCache(reportCache))

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	stats := reportCache.Stats()
	logger.WithField("memory_hits", stats.MemoryHits).WithField("redis_hits", stats.RedisHits).Info("Report cache statistics")
	log.Println("Server stopped")
}
