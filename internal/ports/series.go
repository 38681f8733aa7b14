package ports

import "github.com/ghalamif/CipherPulse/internal/domain"

// SeriesStore is the append-only in-memory history of a session.
type SeriesStore interface {
	Append(s domain.Sample)
	Snapshot() domain.TimeSeries
	Len() int
}
