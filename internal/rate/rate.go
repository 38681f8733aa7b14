// Package rate converts cumulative OS counters and measured durations into
// per-second rates.
package rate

import (
	"time"

	"github.com/ghalamif/CipherPulse/internal/domain"
)

// Epsilon, in seconds, stands in for a zero or negative duration used as a
// divisor. Clock-resolution collisions yield a large finite rate instead of a
// division by zero.
const Epsilon = 1e-6

// Seconds converts d to seconds. Positive durations are returned as is, any
// other duration becomes Epsilon.
func Seconds(d time.Duration) float64 {
	if d <= 0 {
		return Epsilon
	}
	return d.Seconds()
}

// PerSecond divides amount by d, using Epsilon when d is not positive.
func PerSecond(amount float64, d time.Duration) float64 {
	return amount / Seconds(d)
}

// State is the previous counter read carried from one cycle to the next.
type State struct {
	Counters domain.CounterSnapshot
	Time     time.Time
}

// Rates holds the per-second rates derived from two States.
type Rates struct {
	Inbound  float64
	Outbound float64
	Disk     float64
}

// Compute derives rates between prev and curr and returns curr as the state
// for the next cycle. Counter resets are not compensated: a counter that went
// backwards produces a negative rate.
func Compute(prev, curr State) (Rates, State) {
	d := curr.Time.Sub(prev.Time)

	in := delta(prev.Counters.NetBytesRecv, curr.Counters.NetBytesRecv)
	out := delta(prev.Counters.NetBytesSent, curr.Counters.NetBytesSent)
	disk := delta(prev.Counters.DiskBytesRead, curr.Counters.DiskBytesRead) +
		delta(prev.Counters.DiskBytesWritten, curr.Counters.DiskBytesWritten)

	return Rates{
		Inbound:  PerSecond(in, d),
		Outbound: PerSecond(out, d),
		Disk:     PerSecond(disk, d),
	}, curr
}

func delta(prev, curr uint64) float64 {
	return float64(int64(curr - prev))
}
