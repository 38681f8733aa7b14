package sampler

import (
	"fmt"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/units"
)

// ProgressLine renders one sample the way the live display shows it.
func ProgressLine(s domain.Sample) string {
	return fmt.Sprintf("%s | Enc: %s | Dec: %s | In: %s | Out: %s | Disk I/O: %s | Disk Enc Speed: %s | Interval: %.3f s",
		s.Timestamp.Format("2006-01-02 15:04:05"),
		units.HumanBytes(s.EncryptRate),
		units.HumanBytes(s.DecryptRate),
		units.HumanBytes(s.InboundNetRate),
		units.HumanBytes(s.OutboundNetRate),
		units.HumanBytes(s.DiskIORate),
		units.HumanBytes(s.DiskEncryptRate),
		s.IntervalSeconds,
	)
}

func (s *Sampler) printProgress(sample domain.Sample) {
	w := s.deps.Progress
	if w == nil {
		return
	}
	if s.deps.Overwrite {
		// clear to end of line so a shorter line leaves no tail behind
		fmt.Fprintf(w, "\r%s\033[K", ProgressLine(sample))
		return
	}
	fmt.Fprintln(w, ProgressLine(sample))
}
