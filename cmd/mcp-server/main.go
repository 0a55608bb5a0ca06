package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pgx-risk-mcp-server/internal/config"
	"github.com/pgx-risk-mcp-server/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// stdout carries the stdio protocol
	log.SetOutput(os.Stderr)

	// Load configuration
	configManager, err := config.NewManagerWithFile(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	log.Printf("Starting pharmacogenomics MCP server %s with transport: %s", cfg.MCP.ServerVersion, cfg.MCP.TransportType)

	// Create MCP server
	mcpServer, err := mcp.NewServer(configManager)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer mcpServer.Close()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down MCP server...")
		cancel()
	}()

	// Start MCP server
	if err := mcpServer.Start(ctx); err != nil {
		log.Fatalf("MCP server failed to start: %v", err)
	}

	log.Println("Pharmacogenomics MCP server stopped")
}
