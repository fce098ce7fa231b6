package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Duration())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
base_url: https://polls.example.com/api/
user_agent: pollsctl-test/1.0
timeout: 5s
batch_size: 25

log:
  level: debug
  pretty: true

redis:
  addr: localhost:6379
  db: 2
  snapshot_ttl: 1h
`
	cfg, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "https://polls.example.com/api/", cfg.BaseURL)
	assert.Equal(t, "pollsctl-test/1.0", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration())
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Redis.SnapshotTTL.Duration())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad duration", "timeout: soon"},
		{"zero batch size", "batch_size: 0"},
		{"negative batch size", "batch_size: -3"},
		{"bad base url", "base_url: not-a-url"},
		{"unknown log level", "log:\n  level: chatty"},
		{"bad redis addr", "redis:\n  addr: localhost"},
		{"malformed yaml", "base_url: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pollsctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file:8000\nbatch_size: 7\n"), 0o600))

	t.Setenv(EnvBaseURL, "http://env:9000")
	t.Setenv(EnvTimeout, "2s")
	t.Setenv(EnvRedisAddr, "redis:6379")
	t.Setenv(EnvSnapshotTTL, "15m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env:9000", cfg.BaseURL)
	assert.Equal(t, 7, cfg.BatchSize, "file value kept when env unset")
	assert.Equal(t, 2*time.Second, cfg.Timeout.Duration())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Redis.SnapshotTTL.Duration())
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv(EnvBatchSize, "3")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvBatchSize, "many"},
		{EnvTimeout, "forever"},
		{EnvSnapshotTTL, "1 day"},
		{EnvBatchSize, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestConfig_ClientConfig(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "http://polls:8000"
	cfg.BatchSize = 4
	cfg.Timeout = Duration(3 * time.Second)

	cc := cfg.ClientConfig()

	assert.Equal(t, "http://polls:8000", cc.BaseURL)
	assert.Equal(t, 4, cc.DefaultBatchSize)
	assert.Equal(t, 3*time.Second, cc.Timeout)
	assert.Equal(t, cfg.UserAgent, cc.UserAgent)
}
