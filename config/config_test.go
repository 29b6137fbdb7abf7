package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://localhost:3000/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
}

func TestSanitizeClampsBadDurations(t *testing.T) {
	cfg := AppConfig{
		Upstream: UpstreamConfig{Timeout: -1},
		Session:  SessionConfig{TTL: 0},
	}
	cfg.Sanitize()

	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
}

func TestNodeEnvEnablesDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}

func TestEnvPrefixRouting(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://ehr.example.org/api")
	t.Setenv("REDIS_URI", "redis.internal:6380")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))

	assert.Equal(t, "https://ehr.example.org/api", cfg.Upstream.BaseURL)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.URI)
}
