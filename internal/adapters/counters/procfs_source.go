package counters

import (
	"errors"
	"fmt"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/blockdevice"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

// sectorSize is the fixed unit of /proc/diskstats sector counts, independent
// of the device's physical sector size.
const sectorSize = 512

// Config selects where counters are read from and which interfaces count.
type Config struct {
	ProcPath          string   `yaml:"proc_path"`
	SysPath           string   `yaml:"sys_path"`
	ExcludeInterfaces []string `yaml:"exclude_interfaces"`
}

func (c *Config) ApplyDefaults() {
	if c.ProcPath == "" {
		c.ProcPath = procfs.DefaultMountPoint
	}
	if c.SysPath == "" {
		c.SysPath = "/sys"
	}
}

func (c *Config) Validate() error {
	if c.ProcPath == "" {
		return errors.New("proc_path is required")
	}
	if c.SysPath == "" {
		return errors.New("sys_path is required")
	}
	return nil
}

// ProcfsSource sums network and disk counters across the host.
type ProcfsSource struct {
	proc     procfs.FS
	block    blockdevice.FS
	excluded map[string]struct{}
}

func NewProcfsSource(cfg Config) (*ProcfsSource, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proc, err := procfs.NewFS(cfg.ProcPath)
	if err != nil {
		return nil, fmt.Errorf("open procfs %s: %w", cfg.ProcPath, err)
	}
	block, err := blockdevice.NewFS(cfg.ProcPath, cfg.SysPath)
	if err != nil {
		return nil, fmt.Errorf("open blockdevice fs: %w", err)
	}

	excluded := make(map[string]struct{}, len(cfg.ExcludeInterfaces))
	for _, name := range cfg.ExcludeInterfaces {
		excluded[name] = struct{}{}
	}

	return &ProcfsSource{proc: proc, block: block, excluded: excluded}, nil
}

// Snapshot reads both counter families. Either failing fails the snapshot so
// callers never mix a fresh network read with a stale disk read.
func (s *ProcfsSource) Snapshot() (domain.CounterSnapshot, error) {
	var snap domain.CounterSnapshot

	netDev, err := s.proc.NetDev()
	if err != nil {
		return snap, fmt.Errorf("read net/dev: %w", err)
	}
	for name, line := range netDev {
		if _, skip := s.excluded[name]; skip {
			continue
		}
		snap.NetBytesRecv += line.RxBytes
		snap.NetBytesSent += line.TxBytes
	}

	stats, err := s.block.ProcDiskstats()
	if err != nil {
		return snap, fmt.Errorf("read diskstats: %w", err)
	}
	disks := s.wholeDisks()
	for _, d := range stats {
		if disks != nil {
			if _, ok := disks[d.DeviceName]; !ok {
				continue
			}
		}
		snap.DiskBytesRead += d.ReadSectors * sectorSize
		snap.DiskBytesWritten += d.WriteSectors * sectorSize
	}

	return snap, nil
}

// wholeDisks returns the devices listed under /sys/block, which excludes
// partitions so their I/O is not counted twice. A nil map means sysfs was not
// readable and every diskstats row counts.
func (s *ProcfsSource) wholeDisks() map[string]struct{} {
	names, err := s.block.SysBlockDevices()
	if err != nil || len(names) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

var _ ports.CounterSource = (*ProcfsSource)(nil)
