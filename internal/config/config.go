// Package config loads the runtime settings of the entity manager.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/zeuecs/internal/core/observability/log"
)

const (
	DefaultWorlds             = 1
	DefaultFastEntityCapacity = 1024
)

var ErrInvalidConfig = errors.New("invalid runtime configuration")

// Config describes how the entity manager is built.
type Config struct {
	// Worlds is the number of worlds created with the manager.
	Worlds int `json:"worlds" yaml:"worlds"`
	// FastEntityCapacity is the initial length of each world's dense entity array.
	FastEntityCapacity int `json:"fast_entity_capacity" yaml:"fast_entity_capacity"`
	// ParallelDrain drains worlds concurrently at the tick boundary.
	ParallelDrain bool      `json:"parallel_drain" yaml:"parallel_drain"`
	Log           LogConfig `json:"log" yaml:"log"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Encoding    string `json:"encoding" yaml:"encoding"`
	Development bool   `json:"development" yaml:"development"`
}

// Default returns the configuration used when nothing is loaded.
func Default() Config {
	return Config{
		Worlds:             DefaultWorlds,
		FastEntityCapacity: DefaultFastEntityCapacity,
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load decodes a YAML document on top of Default and validates the result.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile is Load for a file path.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Worlds < 0 {
		return fmt.Errorf("%w: worlds must not be negative, got %d", ErrInvalidConfig, c.Worlds)
	}
	if c.FastEntityCapacity < 2 {
		return fmt.Errorf("%w: fast_entity_capacity must be at least 2, got %d", ErrInvalidConfig, c.FastEntityCapacity)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: unknown log encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}
	return nil
}

// LoggerConfig converts the log section for the log package.
func (c Config) LoggerConfig() log.Config {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Config{
		Level:       level,
		Encoding:    c.Log.Encoding,
		Development: c.Log.Development,
	}
}
