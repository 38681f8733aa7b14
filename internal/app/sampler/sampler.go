package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/ghalamif/CipherPulse/internal/bench"
	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
	"github.com/ghalamif/CipherPulse/internal/rate"
)

const (
	DefaultInterval = time.Second

	cycleDurationMetric   = "cipherpulse_cycle_duration_seconds"
	counterFailuresMetric = "cipherpulse_counter_read_failures_total"
)

// State is the lifecycle of a Sampler. Stopped is terminal.
type State int32

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

type Config struct {
	// Interval is the sleep quantum between cycles. Drift is tolerated; each
	// sample reports the interval actually measured.
	Interval time.Duration
	// Budget is the wall-clock time given to each of the encrypt and decrypt
	// benchmarks.
	Budget time.Duration
}

// Deps are the collaborators a Sampler drives. BenchNow and Progress are
// optional.
type Deps struct {
	Transform ports.Transform
	Block     []byte
	Counters  ports.CounterSource
	Probe     ports.Probe
	Series    ports.SeriesStore
	Obs       ports.Observability
	Clock     ports.Clock

	BenchNow  func() time.Time
	Progress  io.Writer
	Overwrite bool
}

// Sampler runs one strictly sequential measurement cycle per tick and
// appends the result to the series until its context is cancelled.
type Sampler struct {
	cfg     Config
	deps    Deps
	runner  bench.Runner
	scratch []byte
	seq     uint64
	state   atomic.Int32
}

type cycleState struct {
	start    time.Time
	counters rate.State
}

func New(cfg Config, d Deps) (*Sampler, error) {
	switch {
	case d.Transform == nil:
		return nil, errors.New("sampler: transform is required")
	case len(d.Block) == 0:
		return nil, errors.New("sampler: reference block is empty")
	case d.Counters == nil:
		return nil, errors.New("sampler: counter source is required")
	case d.Probe == nil:
		return nil, errors.New("sampler: storage probe is required")
	case d.Series == nil:
		return nil, errors.New("sampler: series store is required")
	case d.Obs == nil:
		return nil, errors.New("sampler: observability is required")
	case d.Clock == nil:
		return nil, errors.New("sampler: clock is required")
	}
	if cfg.Budget < 0 || cfg.Interval < 0 {
		return nil, fmt.Errorf("sampler: negative budget %s or interval %s", cfg.Budget, cfg.Interval)
	}

	return &Sampler{
		cfg:     cfg,
		deps:    d,
		runner:  bench.Runner{Budget: cfg.Budget, Now: d.BenchNow},
		scratch: make([]byte, len(d.Block)),
	}, nil
}

// State reports whether the loop is still accepting cycles.
func (s *Sampler) State() State { return State(s.state.Load()) }

// Run blocks until ctx is cancelled. A cycle that has started always
// completes and is appended before Run returns; no cycle starts after ctx is
// done. The only error is a failed initial counter read.
func (s *Sampler) Run(ctx context.Context) error {
	defer s.state.Store(int32(Stopped))

	st, err := s.bootstrap()
	if err != nil {
		s.deps.Obs.LogCritical("sampler_bootstrap_failed", err)
		return err
	}
	s.deps.Obs.LogInfo("sampler_started",
		ports.Field{Key: "transform", Value: s.deps.Transform.Name()},
		ports.Field{Key: "budget", Value: s.cfg.Budget.String()},
		ports.Field{Key: "interval", Value: s.cfg.Interval.String()})

	for ctx.Err() == nil {
		var sample domain.Sample
		sample, st = s.cycle(st)

		s.deps.Series.Append(sample)
		s.deps.Obs.RecordSample(&sample)
		s.printProgress(sample)

		if !s.deps.Clock.Sleep(ctx, s.cfg.Interval) {
			break
		}
	}

	s.deps.Obs.LogInfo("sampler_stopped", ports.Field{Key: "samples", Value: s.deps.Series.Len()})
	return nil
}

func (s *Sampler) bootstrap() (cycleState, error) {
	snap, err := s.deps.Counters.Snapshot()
	if err != nil {
		return cycleState{}, fmt.Errorf("initial counter snapshot: %w", err)
	}
	now := s.deps.Clock.Now()
	return cycleState{
		start:    now,
		counters: rate.State{Counters: snap, Time: now},
	}, nil
}

// cycle measures every channel once. The returned state replaces prev as a
// whole, so the counter state advances exactly once per cycle.
func (s *Sampler) cycle(prev cycleState) (domain.Sample, cycleState) {
	start := s.deps.Clock.Now()
	interval := rate.Seconds(start.Sub(prev.start))

	enc := s.runner.Run(s.deps.Transform.Encrypt, s.deps.Block, s.scratch)
	dec := s.runner.Run(s.deps.Transform.Decrypt, s.deps.Block, s.scratch)

	rates, counters := s.readRates(prev.counters)

	diskEnc := s.deps.Probe.Measure()

	s.seq++
	sample := domain.Sample{
		Seq:             s.seq,
		Timestamp:       start.Truncate(time.Second),
		IntervalSeconds: interval,
		EncryptRate:     enc.BytesPerSecond,
		DecryptRate:     dec.BytesPerSecond,
		InboundNetRate:  rates.Inbound,
		OutboundNetRate: rates.Outbound,
		DiskIORate:      rates.Disk,
		DiskEncryptRate: diskEnc,
	}
	s.deps.Obs.ObserveLatency(cycleDurationMetric, s.deps.Clock.Now().Sub(start).Seconds())

	return sample, cycleState{start: start, counters: counters}
}

// readRates keeps the previous counter state when the OS read fails, so the
// next successful read spans the whole gap.
func (s *Sampler) readRates(prev rate.State) (rate.Rates, rate.State) {
	snap, err := s.deps.Counters.Snapshot()
	if err != nil {
		s.deps.Obs.LogError("counter_read_failed", err)
		s.deps.Obs.IncCounter(counterFailuresMetric, 1)
		return rate.Rates{}, prev
	}
	return rate.Compute(prev, rate.State{Counters: snap, Time: s.deps.Clock.Now()})
}
