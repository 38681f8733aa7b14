package series

import (
	"sync"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

// MemSeries is an append-only in-memory TimeSeries that preserves insertion
// order.
type MemSeries struct {
	mu   sync.Mutex
	data domain.TimeSeries
}

// NewMemSeries preallocates room for sizeHint samples.
func NewMemSeries(sizeHint int) *MemSeries {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &MemSeries{data: make(domain.TimeSeries, 0, sizeHint)}
}

func (m *MemSeries) Append(s domain.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data, s)
}

// Snapshot returns a copy so later appends never alias what the caller holds.
func (m *MemSeries) Snapshot() domain.TimeSeries {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(domain.TimeSeries, len(m.data))
	copy(out, m.data)
	return out
}

func (m *MemSeries) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

var _ ports.SeriesStore = (*MemSeries)(nil)
