// Package config provides configuration loading and validation for the
// catalog console.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "CATCON"

// Duration is a time.Duration that unmarshals from YAML duration strings
// ("30s", "1m") as well as integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	default:
		return fmt.Errorf("invalid duration value: %v", raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

const (
	defaultAddress      = ":8080"
	defaultPageSize     = 25
	defaultPollAttempts = 30
	defaultPollInterval = time.Second
	defaultTimeout      = 30 * time.Second
)

// BackendConfig describes the query backend the console syncs against.
type BackendConfig struct {
	// URL is the query endpoint. An empty URL leaves the console in the
	// explicit not-configured state.
	URL string `yaml:"url"`

	// TokenEnv names the environment variable holding the bearer token.
	// The token itself never appears in the config file.
	TokenEnv string `yaml:"tokenEnv,omitempty"`

	// Timeout is the per-request timeout (e.g. "30s")
	Timeout Duration `yaml:"timeout,omitempty"`
}

// Token resolves the bearer token from the configured environment variable.
func (b *BackendConfig) Token() string {
	if b.TokenEnv == "" {
		return ""
	}
	return os.Getenv(b.TokenEnv)
}

// RunsConfig tunes the run-completion poll loop.
type RunsConfig struct {
	// PollAttempts bounds the completion poll loop
	PollAttempts int `yaml:"pollAttempts,omitempty"`

	// PollInterval is the fixed delay between poll attempts (e.g. "1s")
	PollInterval Duration `yaml:"pollInterval,omitempty"`
}

// TelemetryConfig toggles metrics exposure.
type TelemetryConfig struct {
	Metrics bool `yaml:"metrics"`
}

// Config represents the root configuration structure
type Config struct {
	// Address is the listen address of the console API
	Address string `yaml:"address,omitempty"`

	// PageSize is the default page size for paged listings
	PageSize int `yaml:"pageSize,omitempty"`

	Backend   BackendConfig   `yaml:"backend"`
	Runs      RunsConfig      `yaml:"runs,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// Option is a function that configures the loader
type Option func(*loaderConfig) error

// loaderConfig holds the loader parameters
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Load builds a Config from defaults plus the given options.
func Load(opts ...Option) (*Config, error) {
	lc := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(lc); err != nil {
			return nil, err
		}
	}

	cfg := Default()

	if lc.path != "" {
		data, err := os.ReadFile(lc.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a Config with every tunable at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = defaultAddress
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = Duration(defaultTimeout)
	}
	if c.Runs.PollAttempts <= 0 {
		c.Runs.PollAttempts = defaultPollAttempts
	}
	if c.Runs.PollInterval <= 0 {
		c.Runs.PollInterval = Duration(defaultPollInterval)
	}
}

// Validate checks the configuration for inconsistencies. An empty backend URL
// is valid: the console then stays in the explicit not-configured state.
func (c *Config) Validate() error {
	if c.Backend.URL != "" {
		parsed, err := url.Parse(c.Backend.URL)
		if err != nil {
			return fmt.Errorf("invalid backend URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("backend URL must use http or https, got %q", parsed.Scheme)
		}
	}

	if c.PageSize > 500 {
		return fmt.Errorf("page size %d exceeds the maximum of 500", c.PageSize)
	}

	return nil
}
