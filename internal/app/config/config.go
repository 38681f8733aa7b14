package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/CipherPulse/internal/adapters/counters"
	"github.com/ghalamif/CipherPulse/internal/adapters/exporter"
	"github.com/ghalamif/CipherPulse/internal/adapters/transform"
	"github.com/ghalamif/CipherPulse/internal/app/export"
	"github.com/ghalamif/CipherPulse/internal/logger"
	"github.com/ghalamif/CipherPulse/internal/probe"
)

type Config struct {
	Sampler  SamplerConfig   `yaml:"sampler"`
	Storage  probe.Config    `yaml:"storage"`
	Counters counters.Config `yaml:"counters"`
	Export   ExportConfig    `yaml:"export"`
	Metrics  MetricsConfig   `yaml:"metrics"`
	Log      logger.Config   `yaml:"log"`
}

type SamplerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Budget    time.Duration `yaml:"budget"`
	BlockSize int           `yaml:"block_size"`
	Cipher    string        `yaml:"cipher"`
}

type ExportConfig struct {
	Dir       string          `yaml:"dir"`
	Formats   []string        `yaml:"formats"`
	BatchSize int             `yaml:"batch_size"`
	Timescale TimescaleConfig `yaml:"timescale"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
}

type TimescaleConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type SQLiteConfig struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table"`
}

type MetricsConfig struct {
	Addr     string `yaml:"addr"`
	Disabled bool   `yaml:"disabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a YAML file. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sampler.Interval == 0 {
		c.Sampler.Interval = time.Second
	}
	if c.Sampler.Budget == 0 {
		c.Sampler.Budget = time.Second
	}
	if c.Sampler.BlockSize == 0 {
		c.Sampler.BlockSize = transform.DefaultBlockSize
	}
	if c.Sampler.Cipher == "" {
		c.Sampler.Cipher = transform.AES256CFB
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
	if c.Export.BatchSize == 0 {
		c.Export.BatchSize = exporter.DefaultBatchSize
	}
	if c.Export.Timescale.Table == "" {
		c.Export.Timescale.Table = "cipherpulse_samples"
	}
	if c.Export.SQLite.Path == "" {
		c.Export.SQLite.Path = "cipherpulse.db"
	}
	if c.Export.SQLite.Table == "" {
		c.Export.SQLite.Table = "cipherpulse_samples"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9109"
	}

	c.Storage.ApplyDefaults()
	c.Counters.ApplyDefaults()
	c.Log.ApplyDefaults()
}

// Validate checks a fully defaulted config. Flag overrides are applied before
// it is called again by the CLI.
func (c *Config) Validate() error {
	var errs []error
	if c.Sampler.Interval < 0 {
		errs = append(errs, fmt.Errorf("sampler.interval must not be negative, got %s", c.Sampler.Interval))
	}
	if c.Sampler.Budget < 0 {
		errs = append(errs, fmt.Errorf("sampler.budget must not be negative, got %s", c.Sampler.Budget))
	}
	if c.Sampler.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("sampler.block_size must be positive, got %d", c.Sampler.BlockSize))
	}
	if !transform.Supported(c.Sampler.Cipher) {
		errs = append(errs, fmt.Errorf("sampler.cipher %q is not one of %v", c.Sampler.Cipher, transform.Names))
	}
	if err := c.Counters.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("counters config: %w", err))
	}
	for _, f := range c.Export.Formats {
		if !export.Known(f) {
			errs = append(errs, fmt.Errorf("export.formats: unknown format %q", f))
		}
		if f == export.FormatTimescale && c.Export.Timescale.ConnString == "" {
			errs = append(errs, errors.New("export.timescale.conn_string is required for the timescale format"))
		}
	}
	if c.Export.BatchSize < 0 || c.Export.BatchSize > exporter.MaxBatchSize {
		errs = append(errs, fmt.Errorf("export.batch_size must be between 0 and %d, got %d", exporter.MaxBatchSize, c.Export.BatchSize))
	}
	if !c.Metrics.Disabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required"))
	}
	return errors.Join(errs...)
}
