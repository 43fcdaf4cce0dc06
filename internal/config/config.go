// Package config holds the guavahash CLI configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	LogLevel string   `yaml:"log_level"`
	Workers  int      `yaml:"workers"`
	Fixtures []string `yaml:"fixtures"`
	Remap    Remap    `yaml:"remap"`
}

// Remap configures the remap study.
type Remap struct {
	Keys      int     `yaml:"keys"`
	Seed      uint64  `yaml:"seed"`
	From      int32   `yaml:"from"`
	To        int32   `yaml:"to"`
	Tolerance float64 `yaml:"tolerance"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Fixtures: []string{"testdata/guava.json"},
		Remap: Remap{
			Keys:      100000,
			Seed:      0,
			From:      1,
			To:        64,
			Tolerance: 0.01,
		},
	}
}

// Load reads a YAML config file over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Remap.Keys <= 0 {
		return fmt.Errorf("%w: remap.keys must be > 0, got %d", ErrInvalidConfig, c.Remap.Keys)
	}
	if c.Remap.From < 1 || c.Remap.To <= c.Remap.From {
		return fmt.Errorf("%w: remap range [%d, %d) is empty", ErrInvalidConfig, c.Remap.From, c.Remap.To)
	}
	if c.Remap.Tolerance < 0 || c.Remap.Tolerance > 1 {
		return fmt.Errorf("%w: remap.tolerance must be in [0, 1], got %g", ErrInvalidConfig, c.Remap.Tolerance)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}
