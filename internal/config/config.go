// Package config loads client configuration from defaults, an optional YAML
// file and IGNITE_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/catalog"
)

// Cache backends.
const (
	CacheOff    = "off"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all client configuration.
type Config struct {
	Service  ServiceConfig `yaml:"service"`
	Features FeatureConfig `yaml:"features"`
	Export   ExportConfig  `yaml:"export"`
	Log      LogConfig     `yaml:"log"`
	Cache    CacheConfig   `yaml:"cache"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Levels   []LevelConfig `yaml:"levels"`
}

// ServiceConfig describes the remote evaluation service.
type ServiceConfig struct {
	URL string `yaml:"url"`

	// Mode is "query" (GET /search) or "json" (POST /evaluate).
	Mode    string        `yaml:"mode"`
	Timeout time.Duration `yaml:"timeout"`
}

// FeatureConfig toggles the optional capabilities.
type FeatureConfig struct {
	StatusSignals bool          `yaml:"status_signals"`
	StatusHold    time.Duration `yaml:"status_hold"`
	Export        bool          `yaml:"export"`
}

// ExportConfig controls where exported summaries land.
type ExportConfig struct {
	Dir      string `yaml:"dir"`
	Filename string `yaml:"filename"`
}

// LogConfig controls the zap logger. An empty File discards logs.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// CacheConfig controls the answer cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LevelConfig overrides one built-in level.
type LevelConfig struct {
	ID      int    `yaml:"id"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Prompt  string `yaml:"prompt"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			URL:     "http://localhost:8000",
			Mode:    "json",
			Timeout: 60 * time.Second,
		},
		Features: FeatureConfig{
			StatusSignals: true,
			StatusHold:    3 * time.Second,
			Export:        true,
		},
		Export: ExportConfig{
			Filename: "chat_summary.pdf",
		},
		Log: LogConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			Backend: CacheOff,
			TTL:     24 * time.Hour,
		},
	}
}

// Load builds the effective configuration. path names an optional YAML
// file; when empty IGNITE_CONFIG is consulted. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(path string) (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv("IGNITE_CONFIG")
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files (default ".env"). Missing files are
// not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays IGNITE_* environment variables onto c.
func (c *Config) ApplyEnv() {
	c.Service.URL = getEnv("IGNITE_SERVICE_URL", c.Service.URL)
	c.Service.Mode = getEnv("IGNITE_REQUEST_MODE", c.Service.Mode)
	c.Service.Timeout = getEnvDuration("IGNITE_REQUEST_TIMEOUT", c.Service.Timeout)

	c.Features.StatusSignals = getEnvBool("IGNITE_STATUS_SIGNALS", c.Features.StatusSignals)
	c.Features.StatusHold = getEnvDuration("IGNITE_STATUS_HOLD", c.Features.StatusHold)
	c.Features.Export = getEnvBool("IGNITE_EXPORT", c.Features.Export)

	c.Export.Dir = getEnv("IGNITE_DOWNLOAD_DIR", c.Export.Dir)

	c.Log.File = getEnv("IGNITE_LOG_FILE", c.Log.File)
	c.Log.Level = getEnv("IGNITE_LOG_LEVEL", c.Log.Level)

	c.Cache.Backend = getEnv("IGNITE_CACHE", c.Cache.Backend)
	c.Cache.RedisAddr = getEnv("IGNITE_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getEnv("IGNITE_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("IGNITE_REDIS_DB", c.Cache.RedisDB)
	c.Cache.TTL = getEnvDuration("IGNITE_CACHE_TTL", c.Cache.TTL)

	c.Metrics.Addr = getEnv("IGNITE_METRICS_ADDR", c.Metrics.Addr)
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Service.URL)
	if c.Service.URL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("IGNITE_SERVICE_URL must be an absolute URL, got %q", c.Service.URL))
	}
	if c.Service.Mode != "query" && c.Service.Mode != "json" {
		errs = append(errs, fmt.Errorf("IGNITE_REQUEST_MODE must be \"query\" or \"json\", got %q", c.Service.Mode))
	}
	if c.Service.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("IGNITE_REQUEST_TIMEOUT must be > 0"))
	}
	if c.Features.StatusHold < 0 {
		errs = append(errs, fmt.Errorf("IGNITE_STATUS_HOLD cannot be negative"))
	}
	if c.Export.Filename == "" {
		errs = append(errs, fmt.Errorf("export filename cannot be empty"))
	}

	switch c.Cache.Backend {
	case CacheOff, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("IGNITE_REDIS_ADDR is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q", c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("IGNITE_CACHE_TTL must be > 0"))
	}

	if len(c.Levels) > 0 {
		if _, err := c.Catalog(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Catalog returns the configured levels, or the built-in catalog when the
// file defines none.
func (c Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Levels) == 0 {
		return catalog.Default(), nil
	}
	levels := make([]catalog.Level, 0, len(c.Levels))
	for _, l := range c.Levels {
		levels = append(levels, catalog.Level{
			ID:             l.ID,
			Title:          l.Title,
			Summary:        l.Summary,
			PromptTemplate: l.Prompt,
		})
	}
	return catalog.New(levels...)
}
