package cipherpulse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ghalamif/CipherPulse/internal/adapters/clock"
	"github.com/ghalamif/CipherPulse/internal/adapters/counters"
	"github.com/ghalamif/CipherPulse/internal/adapters/exporter"
	"github.com/ghalamif/CipherPulse/internal/adapters/observability"
	"github.com/ghalamif/CipherPulse/internal/adapters/series"
	"github.com/ghalamif/CipherPulse/internal/adapters/transform"
	"github.com/ghalamif/CipherPulse/internal/app/export"
	"github.com/ghalamif/CipherPulse/internal/app/sampler"
	"github.com/ghalamif/CipherPulse/internal/app/summary"
	"github.com/ghalamif/CipherPulse/internal/logger"
	"github.com/ghalamif/CipherPulse/internal/ports"
	"github.com/ghalamif/CipherPulse/internal/probe"
)

// SessionOption customizes the dependencies used by Session.
type SessionOption func(*sessionOverrides)

type sessionOverrides struct {
	counters      CounterSource
	observability Observability
	clock         Clock
	logger        *log.Logger
	exporters     map[string]Exporter
	progress      io.Writer
	overwrite     bool
	entropy       io.Reader
}

// WithCounterSource replaces the procfs reader, e.g. for a remote host or a
// simulator.
func WithCounterSource(src CounterSource) SessionOption {
	return func(o *sessionOverrides) {
		o.counters = src
	}
}

// WithObservability plugs in a custom observability backend. The built-in
// Prometheus collectors and metrics server are then unused.
func WithObservability(obs Observability) SessionOption {
	return func(o *sessionOverrides) {
		o.observability = obs
	}
}

// WithClock swaps the wall clock, mostly for tests.
func WithClock(c Clock) SessionOption {
	return func(o *sessionOverrides) {
		o.clock = c
	}
}

// WithLogger sets the logger used by the default observability backend.
func WithLogger(l *log.Logger) SessionOption {
	return func(o *sessionOverrides) {
		o.logger = l
	}
}

// WithExporter registers exp for format, replacing the built-in exporter of
// that name or adding a new format.
func WithExporter(format string, exp Exporter) SessionOption {
	return func(o *sessionOverrides) {
		if o.exporters == nil {
			o.exporters = make(map[string]Exporter)
		}
		o.exporters[format] = exp
	}
}

// WithProgress prints one status line per cycle to w. With overwrite set the
// line is redrawn in place.
func WithProgress(w io.Writer, overwrite bool) SessionOption {
	return func(o *sessionOverrides) {
		o.progress = w
		o.overwrite = overwrite
	}
}

// WithEntropy replaces crypto/rand as the source of key material and the
// reference block.
func WithEntropy(r io.Reader) SessionOption {
	return func(o *sessionOverrides) {
		o.entropy = r
	}
}

// Session owns one sampling run: the loop, its in-memory series, the metrics
// endpoint and the exporters used once sampling stops.
type Session struct {
	cfg       *Config
	id        uuid.UUID
	logFile   io.Closer
	obs       ports.Observability
	registry  *prometheus.Registry
	series    *series.MemSeries
	sampler   *sampler.Sampler
	probe     *probe.StorageProbe
	transform ports.Transform
	exporters map[string]Exporter

	mu          sync.Mutex
	closers     []io.Closer
	metricsSrv  *http.Server
	metricsAddr string
	gaugeStopCh chan struct{}
}

// NewSession bootstraps the default adapters (procfs counters, in-memory
// series, Prometheus observability, wall clock). Options override any of them.
func NewSession(cfg *Config, opts ...SessionOption) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides sessionOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	var logFile io.Closer
	lg := overrides.logger
	if lg == nil {
		var err error
		lg, err = logger.New(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		// only a rotating file is ours to close; console writers wrap stderr
		if c, ok := lg.Writer.(*log.FileWriter); ok {
			logFile = c
		}
	}

	registry := prometheus.NewRegistry()
	obs := overrides.observability
	if obs == nil {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		obs = observability.NewPromObs(registry, lg)
	}

	cc, err := transform.NewCryptoContext(overrides.entropy)
	if err != nil {
		return nil, err
	}
	block, err := transform.NewReferenceBlock(overrides.entropy, cfg.Sampler.BlockSize)
	if err != nil {
		return nil, err
	}
	tr, err := transform.New(cfg.Sampler.Cipher, cc)
	if err != nil {
		return nil, err
	}

	src := overrides.counters
	if src == nil {
		src, err = counters.NewProcfsSource(cfg.Counters)
		if err != nil {
			return nil, err
		}
	}

	clk := overrides.clock
	if clk == nil {
		clk = clock.System{}
	}

	pr := probe.NewStorageProbe(cfg.Storage, block, tr, obs)
	store := series.NewMemSeries(0)

	smp, err := sampler.New(sampler.Config{
		Interval: cfg.Sampler.Interval,
		Budget:   cfg.Sampler.Budget,
	}, sampler.Deps{
		Transform: tr,
		Block:     block,
		Counters:  src,
		Probe:     pr,
		Series:    store,
		Obs:       obs,
		Clock:     clk,
		Progress:  overrides.progress,
		Overwrite: overrides.overwrite,
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		cfg:       cfg,
		id:        uuid.New(),
		logFile:   logFile,
		obs:       obs,
		registry:  registry,
		series:    store,
		sampler:   smp,
		probe:     pr,
		transform: tr,
		exporters: overrides.exporters,
	}, nil
}

// ID tags the rows this session writes to SQL exporters.
func (s *Session) ID() uuid.UUID { return s.id }

// ProbePath is the reference file the storage probe encrypts.
func (s *Session) ProbePath() string { return s.probe.Path() }

// Registry exposes the session's Prometheus collectors.
func (s *Session) Registry() *prometheus.Registry { return s.registry }

// Len is safe to call while Run is in progress.
func (s *Session) Len() int { return s.series.Len() }

// Series returns a copy of everything sampled so far.
func (s *Session) Series() TimeSeries { return s.series.Snapshot() }

// Run samples until ctx is cancelled and returns the collected series. The
// metrics endpoint, unless disabled, serves for the duration of the call.
func (s *Session) Run(ctx context.Context) (TimeSeries, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if !s.cfg.Metrics.Disabled {
		if err := s.startMetrics(); err != nil {
			s.obs.LogCritical("metrics_start_failed", err,
				ports.Field{Key: "addr", Value: s.cfg.Metrics.Addr})
			return nil, err
		}
	}

	s.obs.LogInfo("session_started",
		ports.Field{Key: "session_id", Value: s.id.String()},
		ports.Field{Key: "cipher", Value: s.transform.Name()},
		ports.Field{Key: "probe_file", Value: s.probe.Path()})

	if err := s.sampler.Run(ctx); err != nil {
		return s.series.Snapshot(), err
	}
	return s.series.Snapshot(), nil
}

// Summary reduces the current series to per-channel quantiles.
func (s *Session) Summary() (Summary, error) {
	return summary.Build(s.series.Snapshot())
}

// Export writes ts with each format, at most once per format. Exporters that
// fail to build or run are skipped and their errors joined.
func (s *Session) Export(ts TimeSeries, formats []string) ([]Artifact, error) {
	registry := make(map[string]ports.Exporter, len(formats))
	var buildErrs []error
	for _, f := range formats {
		if _, ok := registry[f]; ok {
			continue
		}
		exp, err := s.exporterFor(f)
		if err != nil {
			s.obs.LogError("exporter_unavailable", err, ports.Field{Key: "format", Value: f})
			buildErrs = append(buildErrs, err)
			continue
		}
		registry[f] = exp
	}

	var runnable []string
	for _, f := range formats {
		if _, ok := registry[f]; ok {
			runnable = append(runnable, f)
		}
	}
	artifacts, err := export.Run(ts, runnable, registry, s.obs)
	return artifacts, errors.Join(append(buildErrs, err)...)
}

func (s *Session) exporterFor(format string) (Exporter, error) {
	if exp, ok := s.exporters[format]; ok && exp != nil {
		return exp, nil
	}

	ec := s.cfg.Export
	files := exporter.FileConfig{Dir: ec.Dir}
	switch format {
	case export.FormatPNG:
		return exporter.NewChartExporter(files), nil
	case export.FormatLog:
		return exporter.NewLogExporter(files), nil
	case export.FormatTimescale:
		return s.sqlExporter(exporter.Postgres, ec.Timescale.ConnString, ec.Timescale.Table)
	case export.FormatSQLite:
		return s.sqlExporter(exporter.SQLite, ec.SQLite.Path, ec.SQLite.Table)
	default:
		return nil, fmt.Errorf("no exporter for format %q", format)
	}
}

func (s *Session) sqlExporter(d exporter.Dialect, dsn, table string) (Exporter, error) {
	db, err := exporter.OpenSQL(d, dsn)
	if err != nil {
		return nil, err
	}
	exp, err := exporter.NewSQLExporter(db, d, exporter.SQLConfig{
		Table:     table,
		BatchSize: s.cfg.Export.BatchSize,
		SessionID: s.id,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	s.mu.Lock()
	s.closers = append(s.closers, exp)
	s.mu.Unlock()
	return exp, nil
}

// MetricsAddr is the address the metrics server listens on, empty until Run
// starts it.
func (s *Session) MetricsAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metricsAddr
}

// Shutdown stops the metrics server and closes database handles.
func (s *Session) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	if s.gaugeStopCh != nil {
		close(s.gaugeStopCh)
		s.gaugeStopCh = nil
	}

	if s.metricsSrv != nil {
		if err := s.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		s.metricsSrv = nil
	}

	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil

	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logFile = nil
	}

	return errors.Join(errs...)
}

func (s *Session) startMetrics() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.metricsSrv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", s.cfg.Metrics.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if s.sampler.State() == sampler.Stopped {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("stopped"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.metricsSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.metricsAddr = ln.Addr().String()

	srv := s.metricsSrv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.obs.LogError("metrics_server_exited", err)
		}
	}()

	s.gaugeStopCh = make(chan struct{})
	go s.recordSeriesGauge(s.gaugeStopCh, time.Second)
	return nil
}

func (s *Session) recordSeriesGauge(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.obs.SetGauge(observability.SeriesSamples, float64(s.series.Len()))
		}
	}
}
