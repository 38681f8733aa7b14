package observability

import (
	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

// Metric names used across the sampler.
const (
	CyclesTotal              = "cipherpulse_cycles_total"
	ProbeFailuresTotal       = "cipherpulse_probe_failures_total"
	CounterReadFailuresTotal = "cipherpulse_counter_read_failures_total"
	CycleDurationSeconds     = "cipherpulse_cycle_duration_seconds"
	CycleIntervalSeconds     = "cipherpulse_cycle_interval_seconds"
	ChannelBytesPerSecond    = "cipherpulse_channel_bytes_per_second"
	SeriesSamples            = "cipherpulse_series_samples"
)

type PromObs struct {
	logger   *log.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
	channels *prometheus.GaugeVec
}

// NewPromObs registers the sampler collectors on reg and logs through logger.
func NewPromObs(reg prometheus.Registerer, logger *log.Logger) *PromObs {
	cycles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: CyclesTotal,
		Help: "Sampling cycles completed and appended to the series.",
	})
	probeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ProbeFailuresTotal,
		Help: "Storage probe runs that failed and reported zero.",
	})
	counterFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: CounterReadFailuresTotal,
		Help: "OS counter reads that failed and reported zero rates.",
	})
	interval := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: CycleIntervalSeconds,
		Help: "Measured time between the starts of the last two cycles.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    CycleDurationSeconds,
		Help:    "Time spent measuring one cycle, excluding the inter-cycle sleep.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
	})
	samples := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: SeriesSamples,
		Help: "Samples currently held in the in-memory series.",
	})
	channels := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: ChannelBytesPerSecond,
		Help: "Latest throughput per channel in bytes per second.",
	}, []string{"channel"})

	reg.MustRegister(cycles, probeFailures, counterFailures, interval, samples, duration, channels)

	return &PromObs{
		logger: logger,
		counters: map[string]prometheus.Counter{
			CyclesTotal:              cycles,
			ProbeFailuresTotal:       probeFailures,
			CounterReadFailuresTotal: counterFailures,
		},
		gauges: map[string]prometheus.Gauge{
			CycleIntervalSeconds: interval,
			SeriesSamples:        samples,
		},
		histos: map[string]prometheus.Observer{
			CycleDurationSeconds: duration,
		},
		channels: channels,
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	withFields(p.logger.Info(), fields).Msg(msg)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	withFields(p.logger.Error().Err(err), fields).Msg(msg)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	withFields(p.logger.Error().Err(err).Bool("critical", true), fields).Msg(msg)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordSample(s *domain.Sample) {
	if s == nil {
		return
	}
	for _, ch := range domain.Channels {
		p.channels.WithLabelValues(ch.Key()).Set(s.Value(ch))
	}
	p.SetGauge(CycleIntervalSeconds, s.IntervalSeconds)
	p.IncCounter(CyclesTotal, 1)
	p.logger.Debug().
		Uint64("seq", s.Seq).
		Float64("interval_s", s.IntervalSeconds).
		Float64("enc_bps", s.EncryptRate).
		Float64("dec_bps", s.DecryptRate).
		Msg("sample_recorded")
}

func withFields(e *log.Entry, fields []ports.Field) *log.Entry {
	for _, f := range fields {
		e = e.Any(f.Key, f.Value)
	}
	return e
}

var _ ports.Observability = (*PromObs)(nil)
