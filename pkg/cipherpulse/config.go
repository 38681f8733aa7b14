package cipherpulse

import (
	"github.com/ghalamif/CipherPulse/internal/adapters/counters"
	"github.com/ghalamif/CipherPulse/internal/app/config"
	"github.com/ghalamif/CipherPulse/internal/logger"
	"github.com/ghalamif/CipherPulse/internal/probe"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// SamplerConfig sets the cycle quantum, benchmark budget and cipher.
	SamplerConfig = config.SamplerConfig
	// StorageConfig points the disk-encryption probe at a directory.
	StorageConfig = probe.Config
	// CountersConfig selects procfs/sysfs roots and excluded interfaces.
	CountersConfig = counters.Config
	// ExportConfig selects output formats and their destinations.
	ExportConfig = config.ExportConfig
	// TimescaleConfig configures the Postgres/TimescaleDB exporter.
	TimescaleConfig = config.TimescaleConfig
	// SQLiteConfig configures the SQLite exporter.
	SQLiteConfig = config.SQLiteConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures the structured logger.
	LogConfig = logger.Config
)

// LoadConfig loads YAML from disk using the internal config reader. An empty
// path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// Volume is a mounted filesystem the storage probe could target.
type Volume = counters.Volume

// ListVolumes returns the non-pseudo mounts visible under procPath.
func ListVolumes(procPath string) ([]Volume, error) {
	return counters.ListVolumes(procPath)
}
