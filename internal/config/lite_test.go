package config

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/pgx-risk-mcp-server/internal/domain"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.Equal(t, 256, cfg.CacheMaxItems)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 10, cfg.MaxDrugsPerRequest)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 256, cfg.CacheMaxItems)
	assert.Equal(t, "stdio", cfg.Transport)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("PGX_CACHE_MAX_ITEMS", "500")
	t.Setenv("PGX_CACHE_TTL", "12h")
	t.Setenv("PGX_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("PGX_MAX_DRUGS", "4")
	t.Setenv("PGX_MAX_VCF_BYTES", "2048")
	t.Setenv("PGX_TRANSPORT", "http")
	t.Setenv("PGX_HTTP_PORT", "9090")
	t.Setenv("PGX_LOG_LEVEL", "debug")

	cfg := LoadLiteConfig()

	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, 4, cfg.MaxDrugsPerRequest)
	assert.Equal(t, int64(2048), cfg.MaxVCFBytes)
	assert.Equal(t, "http", cfg.Transport)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadLiteConfig_InvalidValuesIgnored(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("PGX_CACHE_MAX_ITEMS", "-3")
	t.Setenv("PGX_CACHE_TTL", "soon")
	t.Setenv("PGX_HTTP_PORT", "http")

	cfg := LoadLiteConfig()

	assert.Equal(t, 256, cfg.CacheMaxItems)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestLiteConfig_CacheConfig(t *testing.T) {
	cfg := &LiteConfig{CacheMaxItems: 50, CacheTTL: time.Minute, RedisURL: "redis://cache:6379"}

	cc := cfg.CacheConfig()

	assert.True(t, cc.Enabled)
	assert.Equal(t, 50, cc.MaxItems)
	assert.Equal(t, time.Minute, cc.DefaultTTL)
	assert.Equal(t, "redis://cache:6379", cc.RedisURL)

	disabled := (&LiteConfig{}).CacheConfig()
	assert.False(t, disabled.Enabled)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"PGX_CACHE_MAX_ITEMS",
		"PGX_CACHE_TTL",
		"PGX_REDIS_URL",
		"PGX_MAX_DRUGS",
		"PGX_MAX_VCF_BYTES",
		"PGX_TRANSPORT",
		"PGX_HTTP_PORT",
		"PGX_LOG_LEVEL",
		"PGX_LOG_FORMAT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(domain.LoggingConfig{Level: "debug", Format: "text"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
	assert.Equal(t, os.Stderr, logger.Out)

	logger = NewLogger(domain.LoggingConfig{Level: "loud", Output: "stdout"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel(), "unknown level falls back to info")
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	assert.Equal(t, os.Stdout, logger.Out)

	lite := DefaultLiteConfig().LoggingConfig()
	assert.Equal(t, "stderr", lite.Output)
}
