// Package bench measures transform throughput under a wall-clock budget.
package bench

import (
	"time"

	"github.com/ghalamif/CipherPulse/internal/rate"
)

// DefaultBudget is the wall-clock time spent per measurement.
const DefaultBudget = time.Second

// Op applies a transform from src into dst.
type Op func(dst, src []byte)

// Result describes one benchmark run.
type Result struct {
	Bytes          int64
	Iterations     int
	Elapsed        time.Duration
	BytesPerSecond float64
}

// Runner repeats an Op over a block until Budget has elapsed.
type Runner struct {
	Budget time.Duration
	Now    func() time.Time
}

// Run applies op to the whole of src at least once and keeps going until the
// measured elapsed time reaches the budget. The reported rate divides by the
// actual elapsed time, which may overshoot the budget by up to one pass.
func (r Runner) Run(op Op, src, dst []byte) Result {
	now := r.Now
	if now == nil {
		now = time.Now
	}

	var res Result
	start := now()
	for {
		op(dst, src)
		res.Bytes += int64(len(src))
		res.Iterations++
		if now().Sub(start) >= r.Budget {
			break
		}
	}
	res.Elapsed = now().Sub(start)
	res.BytesPerSecond = rate.PerSecond(float64(res.Bytes), res.Elapsed)
	return res
}
