// Package main provides the lightweight entry point for the pharmacogenomics MCP server.
// This version needs no config file; settings come from PGX_* environment variables.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pgx-risk-mcp-server/internal/config"
	"github.com/pgx-risk-mcp-server/internal/mcp"
)

func main() {
	// stdout carries the stdio protocol
	log.SetOutput(os.Stderr)

	// Load lightweight configuration
	cfg := config.LoadLiteConfig()

	log.Printf("Starting pharmacogenomics MCP server (Lite) with transport: %s", cfg.Transport)
	if cfg.RedisURL != "" {
		log.Printf("Shared report cache enabled")
	}

	// Create lite MCP server
	server, err := mcp.NewLiteServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

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

	// Start MCP server
	if err := server.Start(ctx); err != nil {
		log.Fatalf("MCP server failed: %v", err)
	}

	log.Println("Pharmacogenomics MCP server (Lite) stopped")
}
