// Package config provides inspector settings with TOML file loading and
// live reload.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the variable-inspection settings.
type Config struct {
	// PageSize is the number of children fetched per page when
	// expanding an enumerable node.
	PageSize int `toml:"page_size"`

	// MaxLoadBatch caps a single manual paged fetch.
	MaxLoadBatch int `toml:"max_load_batch"`

	// LogLevel is the minimum log level ("debug", "info", "warn",
	// "error").
	LogLevel string `toml:"log_level"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		PageSize:     20,
		MaxLoadBatch: 200,
		LogLevel:     "info",
	}
}

// Load reads configuration from a TOML file, filling unset values with
// defaults. A missing file is not an error and yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.MaxLoadBatch < c.PageSize {
		return fmt.Errorf("max_load_batch (%d) must be at least page_size (%d)", c.MaxLoadBatch, c.PageSize)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
}
