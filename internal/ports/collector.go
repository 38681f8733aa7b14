package ports

import "github.com/ghalamif/CipherPulse/internal/domain"

// CounterSource reads cumulative network and disk counters from the OS.
type CounterSource interface {
	Snapshot() (domain.CounterSnapshot, error)
}
