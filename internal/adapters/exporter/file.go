// Package exporter turns a finished TimeSeries into files or SQL rows.
package exporter

import (
	"errors"
	"path/filepath"
	"time"
)

// ErrEmptySeries is returned by exporters that cannot render zero samples.
var ErrEmptySeries = errors.New("exporter: series is empty")

// TimestampLayout is how sample timestamps are written in text artifacts.
const TimestampLayout = "2006-01-02 15:04:05"

// FileName returns dir/monitoring_YYYYMMDD_HHMMSS.ext for t.
func FileName(dir, ext string, t time.Time) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "monitoring_"+t.Format("20060102_150405")+"."+ext)
}

// FileConfig is shared by exporters that write a single file.
type FileConfig struct {
	Dir string
	// Now stamps the file name; defaults to time.Now.
	Now func() time.Time
}

func (c FileConfig) path(ext string) string {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	return FileName(c.Dir, ext, now())
}
