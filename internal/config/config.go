// Package config loads pollsctl settings from an optional YAML file and
// POLLS_* environment variables.
//
// Example configuration:
//
//	base_url: http://localhost:8000
//	user_agent: pollsctl/0.1.0
//	timeout: 30s
//	batch_size: 10
//
//	log:
//	  level: info
//	  pretty: true
//
//	redis:
//	  addr: localhost:6379
//	  snapshot_ttl: 24h
//
// Environment variables override file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/polls-client/pkg/client"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvBaseURL     = "POLLS_BASE_URL"
	EnvUserAgent   = "POLLS_USER_AGENT"
	EnvTimeout     = "POLLS_TIMEOUT"
	EnvBatchSize   = "POLLS_BATCH_SIZE"
	EnvLogLevel    = "POLLS_LOG_LEVEL"
	EnvRedisAddr   = "POLLS_REDIS_ADDR"
	EnvSnapshotTTL = "POLLS_SNAPSHOT_TTL"
)

// Config is the root configuration for pollsctl.
type Config struct {
	// BaseURL of the polls API. Defaults to http://localhost:8000.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// UserAgent sent with every request.
	UserAgent string `yaml:"user_agent" validate:"required"`

	// Timeout per HTTP request, e.g. "30s".
	Timeout Duration `yaml:"timeout" validate:"gte=0"`

	// BatchSize is the page size used when draining all polls.
	BatchSize int `yaml:"batch_size" validate:"gt=0"`

	Log   LogConfig   `yaml:"log"`
	Redis RedisConfig `yaml:"redis"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error disabled"`
	Pretty bool   `yaml:"pretty"`
}

// RedisConfig configures snapshot export. An empty Addr disables it.
type RedisConfig struct {
	Addr        string   `yaml:"addr" validate:"omitempty,hostname_port"`
	Password    string   `yaml:"password"`
	DB          int      `yaml:"db" validate:"gte=0"`
	SnapshotTTL Duration `yaml:"snapshot_ttl" validate:"gte=0"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	defaults := client.DefaultConfig()
	return &Config{
		BaseURL:   defaults.BaseURL,
		UserAgent: defaults.UserAgent,
		Timeout:   Duration(defaults.Timeout),
		BatchSize: defaults.DefaultBatchSize,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (if non-empty), applies environment overrides, and validates.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
// Environment variables are not consulted.
func Parse(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation error: %w", err)
	}
	return nil
}

// applyEnv overrides fields from environment variables found by lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.UserAgent = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = Duration(d)
	}
	if v, ok := lookup(EnvBatchSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q: %w", EnvBatchSize, v, err)
		}
		c.BatchSize = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup(EnvSnapshotTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", EnvSnapshotTTL, v, err)
		}
		c.Redis.SnapshotTTL = Duration(d)
	}
	return nil
}

// ClientConfig converts to a client.Config.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.UserAgent = c.UserAgent
	cfg.Timeout = c.Timeout.Duration()
	cfg.DefaultBatchSize = c.BatchSize
	return cfg
}
