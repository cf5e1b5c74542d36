// Package config loads CLI settings from an optional YAML file and
// PIPEFUNC_* environment variables. Environment variables win.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "PIPEFUNC_"

// Config holds the CLI settings.
type Config struct {
	Log      LogConfig     `koanf:"log"`
	Pipeline string        `koanf:"pipeline"`
	Trace    TraceConfig   `koanf:"trace"`
	Metrics  MetricsConfig `koanf:"metrics"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level string `koanf:"level"`
}

// TraceConfig toggles span output on stderr.
type TraceConfig struct {
	Enabled bool `koanf:"enabled"`
}

// MetricsConfig toggles the Prometheus dump after a run.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
}

// Load reads path, if not empty, then the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	// Load environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("log.level") {
		k.Set("log.level", "info")
	}
	if !k.Exists("metrics.namespace") {
		k.Set("metrics.namespace", "pipefunc")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
