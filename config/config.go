// Package config loads the intent resolver configuration from a YAML file
// with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
)

const (
	defaultRenderCacheTTL = 5 * time.Minute
)

// DefinitionsConfig points the registries at their backing files.
type DefinitionsConfig struct {
	// IntentsPath is the JSON file holding {"intents": [...]}.
	IntentsPath string `yaml:"intents_path" env:"INTENTS_PATH"`
	// ComponentsPath is the JSON file holding {"components": {...}}.
	ComponentsPath string `yaml:"components_path" env:"COMPONENTS_PATH"`
	// Watch enables hot reload on definition file changes.
	Watch bool `yaml:"watch" env:"DEFINITIONS_WATCH"`
}

// RenderConfig controls the component renderer.
type RenderConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Config is the top-level configuration.
type Config struct {
	Logging     logger.Config     `yaml:"logging"`
	Definitions DefinitionsConfig `yaml:"definitions"`
	Render      RenderConfig      `yaml:"render"`
}

// Load reads a YAML config file, loads .env if present, and applies
// environment variable overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults applies default values to unset fields.
func (c *Config) SetDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Render.CacheTTL == 0 {
		c.Render.CacheTTL = defaultRenderCacheTTL
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Definitions.IntentsPath == "" {
		return errors.New("definitions.intents_path is required")
	}
	if c.Definitions.ComponentsPath == "" {
		return errors.New("definitions.components_path is required")
	}
	if c.Render.CacheTTL < 0 {
		return errors.New("render.cache_ttl must not be negative")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Development = b
		}
	}
	if v := os.Getenv("INTENTS_PATH"); v != "" {
		c.Definitions.IntentsPath = v
	}
	if v := os.Getenv("COMPONENTS_PATH"); v != "" {
		c.Definitions.ComponentsPath = v
	}
	if v := os.Getenv("DEFINITIONS_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Definitions.Watch = b
		}
	}
}
