package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Brightcove BrightcoveConfig `toml:"brightcove"`
	Cache      CacheConfig      `toml:"cache"`
	Database   DatabaseConfig   `toml:"database"`
	Log        LogConfig        `toml:"log"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

// BrightcoveConfig contains Media API endpoints and credentials.
type BrightcoveConfig struct {
	ReadToken      string  `toml:"read_token"`
	WriteToken     string  `toml:"write_token"`
	ReadURL        string  `toml:"read_url"`
	WriteURL       string  `toml:"write_url"`
	ClientID       string  `toml:"client_id"`
	ClientSecret   string  `toml:"client_secret"`
	TokenURL       string  `toml:"token_url"`
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout as a [time.Duration].
func (b BrightcoveConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// UsesOAuth reports whether client credentials are configured.
func (b BrightcoveConfig) UsesOAuth() bool {
	return b.ClientID != "" && b.ClientSecret != ""
}

// CacheConfig contains settings for the on-disk read response cache.
type CacheConfig struct {
	Path       string `toml:"path"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// TTL returns the cache lifetime as a [time.Duration].
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// MetricsConfig contains the optional Prometheus listener address.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate checks endpoint URLs and numeric limits.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"read_url":  c.Brightcove.ReadURL,
		"write_url": c.Brightcove.WriteURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: brightcove.%s %q is not an absolute URL", ErrInvalidConfig, name, raw)
		}
	}

	if c.Brightcove.UsesOAuth() && c.Brightcove.TokenURL == "" {
		return fmt.Errorf("%w: brightcove.token_url is required with client credentials", ErrInvalidConfig)
	}
	if c.Brightcove.RateLimit < 0 {
		return fmt.Errorf("%w: brightcove.rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.Brightcove.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: brightcove.timeout_seconds must not be negative", ErrInvalidConfig)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("%w: cache.ttl_seconds must not be negative", ErrInvalidConfig)
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
