package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no IGNITE_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"IGNITE_CONFIG", "IGNITE_SERVICE_URL", "IGNITE_REQUEST_MODE", "IGNITE_REQUEST_TIMEOUT",
		"IGNITE_STATUS_SIGNALS", "IGNITE_STATUS_HOLD", "IGNITE_EXPORT", "IGNITE_DOWNLOAD_DIR",
		"IGNITE_LOG_FILE", "IGNITE_LOG_LEVEL", "IGNITE_CACHE", "IGNITE_REDIS_ADDR",
		"IGNITE_REDIS_PASSWORD", "IGNITE_REDIS_DB", "IGNITE_CACHE_TTL", "IGNITE_METRICS_ADDR",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.Service.URL)
	assert.Equal(t, "json", cfg.Service.Mode)
	assert.Equal(t, 3*time.Second, cfg.Features.StatusHold)
	assert.True(t, cfg.Features.StatusSignals)
	assert.True(t, cfg.Features.Export)
	assert.Equal(t, "chat_summary.pdf", cfg.Export.Filename)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ignite.yaml")
	writeFile(t, path, `
service:
  url: http://file:9000
  mode: query
features:
  status_hold: 5s
log:
  level: debug
`)
	t.Setenv("IGNITE_SERVICE_URL", "http://env:7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:7000", cfg.Service.URL, "env beats file")
	assert.Equal(t, "query", cfg.Service.Mode, "file beats default")
	assert.Equal(t, 5*time.Second, cfg.Features.StatusHold)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60*time.Second, cfg.Service.Timeout, "default kept")
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "other.yaml")
	writeFile(t, path, "metrics:\n  addr: 127.0.0.1:9100\n")
	t.Setenv("IGNITE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "IGNITE_REQUEST_MODE=query\nIGNITE_CACHE_TTL=86400\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "query", cfg.Service.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "service:\n  uri: http://typo\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	isolate(t)
	t.Setenv("IGNITE_STATUS_SIGNALS", "off")
	t.Setenv("IGNITE_EXPORT", "no")
	t.Setenv("IGNITE_STATUS_HOLD", "250ms")
	t.Setenv("IGNITE_REDIS_DB", "3")
	t.Setenv("IGNITE_REQUEST_TIMEOUT", "garbage")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.False(t, cfg.Features.StatusSignals)
	assert.False(t, cfg.Features.Export)
	assert.Equal(t, 250*time.Millisecond, cfg.Features.StatusHold)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
	assert.Equal(t, 60*time.Second, cfg.Service.Timeout, "unparsable value falls back")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"relative url", func(c *Config) { c.Service.URL = "localhost:8000" }, "IGNITE_SERVICE_URL"},
		{"bad mode", func(c *Config) { c.Service.Mode = "grpc" }, "IGNITE_REQUEST_MODE"},
		{"zero timeout", func(c *Config) { c.Service.Timeout = 0 }, "IGNITE_REQUEST_TIMEOUT"},
		{"negative hold", func(c *Config) { c.Features.StatusHold = -time.Second }, "IGNITE_STATUS_HOLD"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }, "IGNITE_REDIS_ADDR"},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown cache backend"},
		{"duplicate levels", func(c *Config) {
			c.Levels = []LevelConfig{{ID: 1, Prompt: "a"}, {ID: 1, Prompt: "b"}}
		}, "invalid catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ZeroHoldAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.StatusHold = 0
	assert.NoError(t, cfg.Validate())
}

func TestCatalog(t *testing.T) {
	cfg := DefaultConfig()
	c, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	cfg.Levels = []LevelConfig{
		{ID: 2, Title: "Board", Prompt: "Board prompt. Argument: "},
		{ID: 1, Title: "Team", Prompt: "Team prompt. Argument: "},
	}
	c, err = cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, c.IDs())
	l, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Board prompt. Argument: ", l.PromptTemplate)
}
