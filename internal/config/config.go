// Package config loads the chesscore YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abcus/chess-engine-sub000/internal/board"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Config is the full chesscore configuration.
type Config struct {
	Tables  TablesConfig  `yaml:"tables"`
	Perft   PerftConfig   `yaml:"perft"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// TablesConfig seeds the attack and hash tables. Zero keeps the built-in
// seed.
type TablesConfig struct {
	ZobristSeed uint64 `yaml:"zobrist_seed"`
	MagicSeed   uint64 `yaml:"magic_seed"`
}

// PerftConfig bounds the parallel perft runner.
type PerftConfig struct {
	Workers  int `yaml:"workers" validate:"min=1,max=256"`
	MaxDepth int `yaml:"max_depth" validate:"min=1,max=12"`
	HashMB   int `yaml:"hash_mb" validate:"min=0,max=4096"`
}

// StorageConfig controls the on-disk perft cache. An empty Dir selects the
// platform data directory.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Perft: PerftConfig{
			Workers:  4,
			MaxDepth: 8,
			HashMB:   64,
		},
		Storage: StorageConfig{Enabled: true},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result. An empty path returns Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags on every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// TableConfig converts the tables section to a board.TableConfig.
func (c *Config) TableConfig() board.TableConfig {
	tc := board.DefaultTableConfig()
	if c.Tables.ZobristSeed != 0 {
		tc.ZobristSeed = c.Tables.ZobristSeed
	}
	if c.Tables.MagicSeed != 0 {
		tc.MagicSeed = c.Tables.MagicSeed
	}
	return tc
}
