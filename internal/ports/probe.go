package ports

// Probe measures a throughput in bytes per second and never fails; a broken
// probe reports zero.
type Probe interface {
	Measure() float64
}
