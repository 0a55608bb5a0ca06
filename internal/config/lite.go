// Package config provides configuration management for the servers.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no config file and no Redis; everything has a sensible default.
type LiteConfig struct {
	// Cache settings
	CacheMaxItems int           // Maximum reports in memory cache
	CacheTTL      time.Duration // Report cache TTL
	RedisURL      string        // Optional shared cache

	// Request limits
	MaxDrugsPerRequest int
	MaxVCFBytes        int64

	// Transport settings
	Transport string // Transport type: stdio, http
	HTTPPort  int    // HTTP port (if transport is http)

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	return &LiteConfig{
		CacheMaxItems:      256,
		CacheTTL:           15 * time.Minute,
		MaxDrugsPerRequest: 10,
		MaxVCFBytes:        5 << 20,
		Transport:          "stdio",
		HTTPPort:           8080,
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Cache settings
	if v := os.Getenv("PGX_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("PGX_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	cfg.RedisURL = os.Getenv("PGX_REDIS_URL")

	// Limits
	if v := os.Getenv("PGX_MAX_DRUGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxDrugsPerRequest = n
		}
	}
	if v := os.Getenv("PGX_MAX_VCF_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxVCFBytes = n
		}
	}

	// Transport
	if v := os.Getenv("PGX_TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("PGX_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	// Logging
	if v := os.Getenv("PGX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PGX_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// CacheConfig converts the lite settings to the report cache configuration.
func (c *LiteConfig) CacheConfig() domain.CacheConfig {
	return domain.CacheConfig{
		Enabled:    c.CacheMaxItems > 0,
		MaxItems:   c.CacheMaxItems,
		DefaultTTL: c.CacheTTL,
		RedisURL:   c.RedisURL,
		MaxRetries: 1,
	}
}

// AnalysisConfig returns the request limits.
func (c *LiteConfig) AnalysisConfig() domain.AnalysisConfig {
	return domain.AnalysisConfig{
		MaxDrugsPerRequest: c.MaxDrugsPerRequest,
		MaxVCFBytes:        c.MaxVCFBytes,
	}
}
