package ports

import "github.com/ghalamif/CipherPulse/internal/domain"

// Exporter turns a finished TimeSeries into an artifact and returns where it
// was written (a file path, a table reference, ...).
type Exporter interface {
	Export(ts domain.TimeSeries) (string, error)
	Name() string
}
