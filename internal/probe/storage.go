// Package probe measures encryption throughput over data read back from a
// storage path.
package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ghalamif/CipherPulse/internal/ports"
	"github.com/ghalamif/CipherPulse/internal/rate"
)

// DefaultFileName is the reference file created inside the storage path.
const DefaultFileName = "test_file.dat"

// FailureCounter is incremented on every failed measurement.
const FailureCounter = "cipherpulse_probe_failures_total"

// IOError reports why the probe could not create or read its reference file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage probe %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Config points the probe at a directory. The directory must already exist.
type Config struct {
	Path     string `yaml:"path"`
	FileName string `yaml:"file_name"`
}

func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "."
	}
	if c.FileName == "" {
		c.FileName = DefaultFileName
	}
}

// StorageProbe encrypts the reference file once per Measure call.
type StorageProbe struct {
	path    string
	block   []byte
	tr      ports.Transform
	obs     ports.Observability
	now     func() time.Time
	scratch []byte
}

// NewStorageProbe seeds the reference file from block when it is missing.
func NewStorageProbe(cfg Config, block []byte, tr ports.Transform, obs ports.Observability) *StorageProbe {
	cfg.ApplyDefaults()
	return &StorageProbe{
		path:  filepath.Join(cfg.Path, cfg.FileName),
		block: block,
		tr:    tr,
		obs:   obs,
		now:   time.Now,
	}
}

// Path is the reference file location.
func (p *StorageProbe) Path() string { return p.path }

// Measure returns bytes per second, or zero after logging when the file cannot
// be created or read.
func (p *StorageProbe) Measure() float64 {
	bps, err := p.measure()
	if err != nil {
		p.obs.LogError("storage_probe_failed", err, ports.Field{Key: "path", Value: p.path})
		p.obs.IncCounter(FailureCounter, 1)
		return 0
	}
	return bps
}

func (p *StorageProbe) measure() (float64, error) {
	if err := p.ensureFile(); err != nil {
		return 0, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, &IOError{Op: "read", Path: p.path, Err: err}
	}

	if cap(p.scratch) < len(data) {
		p.scratch = make([]byte, len(data))
	}
	dst := p.scratch[:len(data)]

	start := p.now()
	p.tr.Encrypt(dst, data)
	elapsed := p.now().Sub(start)

	bits := float64(len(data)) * 8
	return rate.PerSecond(bits, elapsed) / 8, nil
}

// ensureFile writes the reference block only when the file does not exist;
// an existing file is used as-is whatever its size.
func (p *StorageProbe) ensureFile() error {
	_, err := os.Stat(p.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &IOError{Op: "stat", Path: p.path, Err: err}
	}
	if err := os.WriteFile(p.path, p.block, 0o644); err != nil {
		return &IOError{Op: "create", Path: p.path, Err: err}
	}
	return nil
}

var _ ports.Probe = (*StorageProbe)(nil)
