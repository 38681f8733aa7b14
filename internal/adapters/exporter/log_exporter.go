package exporter

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
	"github.com/ghalamif/CipherPulse/internal/units"
)

// LogHeader is the first line of every log artifact.
const LogHeader = "Timestamp,Enc Speed,Dec Speed,In,Out,Disk I/O,Disk Enc Speed,Interval (s)"

// LogExporter writes one comma-separated line per sample with human-readable
// sizes.
type LogExporter struct {
	cfg FileConfig
}

func NewLogExporter(cfg FileConfig) *LogExporter {
	return &LogExporter{cfg: cfg}
}

func (e *LogExporter) Name() string { return "log" }

// Export writes the header even for an empty series.
func (e *LogExporter) Export(ts domain.TimeSeries) (string, error) {
	path := e.cfg.path("log")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create log %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, LogHeader)
	for _, s := range ts {
		fmt.Fprintln(w, LogLine(s))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("write log %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close log %s: %w", path, err)
	}
	return path, nil
}

// LogLine renders one sample in LogHeader column order.
func LogLine(s domain.Sample) string {
	return fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%.3f",
		s.Timestamp.Format(TimestampLayout),
		units.HumanBytes(s.EncryptRate),
		units.HumanBytes(s.DecryptRate),
		units.HumanBytes(s.InboundNetRate),
		units.HumanBytes(s.OutboundNetRate),
		units.HumanBytes(s.DiskIORate),
		units.HumanBytes(s.DiskEncryptRate),
		s.IntervalSeconds,
	)
}

var _ ports.Exporter = (*LogExporter)(nil)
