package bench

import (
	"testing"
	"time"

	"github.com/ghalamif/CipherPulse/internal/rate"
)

func TestRunZeroBudgetRunsOnce(t *testing.T) {
	calls := 0
	r := Runner{Budget: 0}
	res := r.Run(func(dst, src []byte) { calls++ }, make([]byte, 64), make([]byte, 64))

	if calls != 1 || res.Iterations != 1 {
		t.Fatalf("expected exactly one iteration, got calls=%d iterations=%d", calls, res.Iterations)
	}
	if res.Bytes != 64 {
		t.Fatalf("expected 64 bytes processed, got %d", res.Bytes)
	}
	if res.BytesPerSecond <= 0 {
		t.Fatalf("expected positive throughput, got %f", res.BytesPerSecond)
	}
}

func TestRunUsesActualElapsedTime(t *testing.T) {
	base := time.Unix(0, 0)
	ticks := 0
	// Every clock read advances 300ms, so the 1s budget is crossed on the
	// fourth check and the final read lands at 1.5s.
	now := func() time.Time {
		t := base.Add(time.Duration(ticks) * 300 * time.Millisecond)
		ticks++
		return t
	}

	r := Runner{Budget: time.Second, Now: now}
	res := r.Run(func(dst, src []byte) {}, make([]byte, 1000), make([]byte, 1000))

	if res.Iterations != 4 {
		t.Fatalf("expected 4 iterations, got %d", res.Iterations)
	}
	if res.Elapsed != 1500*time.Millisecond {
		t.Fatalf("expected elapsed 1.5s, got %s", res.Elapsed)
	}
	if want := 4000 / 1.5; res.BytesPerSecond != want {
		t.Fatalf("expected %f B/s, got %f", want, res.BytesPerSecond)
	}
}

func TestRunSlowSinglePassReportsThatPass(t *testing.T) {
	base := time.Unix(0, 0)
	reads := 0
	now := func() time.Time {
		reads++
		if reads == 1 {
			return base
		}
		return base.Add(4 * time.Second)
	}

	r := Runner{Budget: time.Second, Now: now}
	res := r.Run(func(dst, src []byte) {}, make([]byte, 8000), make([]byte, 8000))

	if res.Iterations != 1 {
		t.Fatalf("expected a single slow pass, got %d", res.Iterations)
	}
	if res.BytesPerSecond != 2000 {
		t.Fatalf("expected 2000 B/s, got %f", res.BytesPerSecond)
	}
}

func TestRunFrozenClockStaysFinite(t *testing.T) {
	frozen := time.Unix(10, 0)
	r := Runner{Budget: 0, Now: func() time.Time { return frozen }}
	res := r.Run(func(dst, src []byte) {}, make([]byte, 10), make([]byte, 10))

	bytes := 10.0
	if res.BytesPerSecond != bytes/rate.Epsilon {
		t.Fatalf("expected epsilon-floored throughput, got %f", res.BytesPerSecond)
	}
}
