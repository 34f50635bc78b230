// Package config loads the planner's YAML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type FeedConfig struct {
	// Exactly one of URL and Path should be set.
	URL     string            `yaml:"url" validate:"omitempty,url"`
	Path    string            `yaml:"path"`
	Headers map[string]string `yaml:"headers"`
}

type CacheConfig struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=memory sqlite3 postgres"`
	DSN    string `yaml:"dsn"`
}

type PlannerConfig struct {
	MinInterchange int `yaml:"minInterchange" validate:"gte=0"`
	MaxRounds      int `yaml:"maxRounds" validate:"gte=0"`
	MaxSearchDays  int `yaml:"maxSearchDays" validate:"gte=0"`
}

type Config struct {
	Feed     FeedConfig    `yaml:"feed"`
	Cache    CacheConfig   `yaml:"cache"`
	Planner  PlannerConfig `yaml:"planner"`
	LogLevel string        `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
}

// Load reads the first readable path and fills defaults. A missing
// file is not an error; the defaults stand alone.
func Load(paths ...string) (*Config, error) {
	cfg := &Config{}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		break
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}
