package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	Cache       CacheConfig     `mapstructure:"cache"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	MCP         MCPConfig       `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TLSEnabled     bool          `mapstructure:"tls_enabled"`
	CertFile       string        `mapstructure:"cert_file"`
	KeyFile        string        `mapstructure:"key_file"`
}

// AnalysisConfig bounds the work a single request may ask for
type AnalysisConfig struct {
	MaxDrugsPerRequest int   `mapstructure:"max_drugs_per_request"`
	MaxVCFBytes        int64 `mapstructure:"max_vcf_bytes"`
}

// CacheConfig represents report cache configuration
type CacheConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxItems       int           `mapstructure:"max_items"`
	DefaultTTL     time.Duration `mapstructure:"default_ttl"`
	RedisURL       string        `mapstructure:"redis_url"`
	RedisKeyPrefix string        `mapstructure:"redis_key_prefix"`
	MaxRetries     int           `mapstructure:"max_retries"`
	PoolSize       int           `mapstructure:"pool_size"`
	PoolTimeout    time.Duration `mapstructure:"pool_timeout"`
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout"`
}

// RateLimitConfig represents per-client request throttling
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName     string        `mapstructure:"server_name"`
	ServerVersion  string        `mapstructure:"server_version"`
	TransportType  string        `mapstructure:"transport_type"` // "stdio" or "http"
	HTTPPort       int           `mapstructure:"http_port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}
