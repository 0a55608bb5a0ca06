package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestManager_Defaults(t *testing.T) {
	m, err := NewManagerWithFile(writeConfig(t, "environment: development\n"))
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(5<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 10, cfg.Analysis.MaxDrugsPerRequest)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, "stdio", cfg.MCP.TransportType)
	assert.True(t, m.IsDevelopment())
	assert.False(t, m.IsProduction())
	assert.NoError(t, m.Validate())
}

func TestManager_FileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9000
cache:
  redis_url: redis://cache:6379/0
  default_ttl: 1h
logging:
  level: debug
`)
	t.Setenv("PGX_RISK_SERVER_PORT", "9100")
	t.Setenv("PGX_RISK_ANALYSIS_MAX_DRUGS_PER_REQUEST", "3")

	m, err := NewManagerWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, m.GetServerConfig().Port, "environment overrides file")
	assert.Equal(t, 3, m.GetConfig().Analysis.MaxDrugsPerRequest)
	assert.Equal(t, time.Hour, m.GetCacheConfig().DefaultTTL)
	assert.Equal(t, "redis://cache:6379/0", m.GetRedisConnectionString())
	assert.True(t, m.IsProduction())
	assert.NoError(t, m.Validate())
}

func TestManager_Reload(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	m, err := NewManagerWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, m.GetServerConfig().Port)

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o600))
	require.NoError(t, m.Reload())
	assert.Equal(t, 9001, m.GetServerConfig().Port)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"zero drug limit", "analysis:\n  max_drugs_per_request: 0\n"},
		{"tls without cert", "server:\n  tls_enabled: true\n"},
		{"bad transport", "mcp:\n  transport_type: carrier-pigeon\n"},
		{"rate limit without burst", "rate_limit:\n  burst: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManagerWithFile(writeConfig(t, tt.body))
			require.NoError(t, err)
			assert.Error(t, m.Validate())
		})
	}
}

func TestManager_MalformedFile(t *testing.T) {
	_, err := NewManagerWithFile(writeConfig(t, "server: [unclosed\n"))
	assert.Error(t, err)
}
