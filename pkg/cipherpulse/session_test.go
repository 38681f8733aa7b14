package cipherpulse

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/phuslu/log"
)

func TestSessionRunCollectsAndExports(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := NewSession(cfg,
		WithCounterSource(&stubCounters{}),
		WithClock(&stubClock{now: time.Unix(1_700_000_000, 0), stopAfter: 3, cancel: cancel}),
		WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	defer sess.Shutdown(context.Background())

	ts, err := sess.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if ts.Len() != 3 || sess.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d (len %d)", ts.Len(), sess.Len())
	}
	if _, err := os.Stat(sess.ProbePath()); err != nil {
		t.Fatalf("expected probe reference file: %v", err)
	}
	// The first read shares its instant with the bootstrap read; later ones
	// are a second apart.
	for _, s := range ts[1:] {
		if s.InboundNetRate != 1000 {
			t.Fatalf("expected 1000 B/s inbound, got %f", s.InboundNetRate)
		}
	}

	artifacts, err := sess.Export(ts, []string{FormatLog, FormatLog})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected one artifact, got %+v", artifacts)
	}
	raw, err := os.ReadFile(artifacts[0].Location)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if lines := strings.Count(string(raw), "\n"); lines != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", lines)
	}

	sum, err := sess.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Samples != 3 {
		t.Fatalf("expected summary over 3 samples, got %d", sum.Samples)
	}
}

func TestSessionServesMetrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Disabled = false
	cfg.Metrics.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		sess    *Session
		metrics string
		health  int
		getErr  error
	)
	clk := &stubClock{now: time.Unix(0, 0), stopAfter: 1, cancel: cancel}
	clk.onSleep = func() {
		base := "http://" + sess.MetricsAddr()
		var body []byte
		body, health, getErr = get(base + "/metrics")
		if getErr == nil {
			metrics = string(body)
			_, health, getErr = get(base + "/healthz")
		}
	}

	var err error
	sess, err = NewSession(cfg, WithCounterSource(&stubCounters{}), WithClock(clk), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	defer sess.Shutdown(context.Background())

	if _, err := sess.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if getErr != nil {
		t.Fatalf("scrape: %v", getErr)
	}
	if !strings.Contains(metrics, "cipherpulse_cycles_total 1") {
		t.Fatalf("expected one recorded cycle in metrics:\n%s", metrics)
	}
	if !strings.Contains(metrics, `cipherpulse_channel_bytes_per_second{channel="net_in"}`) {
		t.Fatalf("expected inbound channel gauge in metrics:\n%s", metrics)
	}
	if health != http.StatusOK {
		t.Fatalf("expected healthy while running, got %d", health)
	}
}

func TestSessionExportCustomAndUnknown(t *testing.T) {
	cfg := testConfig(t)
	var got TimeSeries
	sess, err := NewSession(cfg,
		WithCounterSource(&stubCounters{}),
		WithLogger(quietLogger()),
		WithExporter("memory", NewCallbackExporter("memory", func(ts TimeSeries) error {
			got = ts
			return nil
		})),
	)
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	defer sess.Shutdown(context.Background())

	ts := TimeSeries{{Seq: 1}, {Seq: 2}}
	artifacts, err := sess.Export(ts, []string{"memory", "pdf"})
	if err == nil || !strings.Contains(err.Error(), "pdf") {
		t.Fatalf("expected error naming the unknown format, got %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Format != "memory" {
		t.Fatalf("expected the custom exporter to still run, got %+v", artifacts)
	}
	if got.Len() != 2 {
		t.Fatalf("callback saw %d samples, want 2", got.Len())
	}
}

func TestSessionExportSQLiteNeedsPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.SQLite.Path = ""
	sess, err := NewSession(cfg, WithCounterSource(&stubCounters{}), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	defer sess.Shutdown(context.Background())

	if _, err := sess.Export(TimeSeries{{Seq: 1}}, []string{FormatSQLite}); err == nil {
		t.Fatalf("expected error for missing sqlite path")
	}
}

func TestNewSessionValidation(t *testing.T) {
	if _, err := NewSession(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}

	cfg := testConfig(t)
	cfg.Sampler.Cipher = "rot13"
	if _, err := NewSession(cfg, WithCounterSource(&stubCounters{}), WithLogger(quietLogger())); err == nil {
		t.Fatalf("expected error for unknown cipher")
	}
}

func TestSessionBootstrapFailure(t *testing.T) {
	cfg := testConfig(t)
	sess, err := NewSession(cfg, WithCounterSource(&stubCounters{err: errors.New("no procfs")}), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	defer sess.Shutdown(context.Background())

	if _, err := sess.Run(context.Background()); err == nil {
		t.Fatalf("expected bootstrap error")
	}
}

func TestSessionMetricsListenFailureLogsCritical(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Metrics.Disabled = false
	cfg.Metrics.Addr = busy.Addr().String()

	obs := &criticalObs{}
	sess, err := NewSession(cfg, WithCounterSource(&stubCounters{}), WithObservability(obs), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	defer sess.Shutdown(context.Background())

	if _, err := sess.Run(context.Background()); err == nil {
		t.Fatalf("expected listen error for busy metrics address")
	}
	if len(obs.criticals) != 1 || obs.criticals[0] != "metrics_start_failed" {
		t.Fatalf("expected metrics_start_failed critical log, got %v", obs.criticals)
	}
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Sampler.Budget = 0
	cfg.Sampler.BlockSize = 4096
	cfg.Storage.Path = t.TempDir()
	cfg.Export.Dir = t.TempDir()
	cfg.Metrics.Disabled = true
	return cfg
}

func quietLogger() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

func get(url string) ([]byte, int, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}

// stubCounters grows inbound traffic by 1000 bytes per read.
type stubCounters struct {
	recv uint64
	err  error
}

func (s *stubCounters) Snapshot() (CounterSnapshot, error) {
	if s.err != nil {
		return CounterSnapshot{}, s.err
	}
	snap := CounterSnapshot{NetBytesRecv: s.recv}
	s.recv += 1000
	return snap, nil
}

// stubClock advances one second per Sleep and cancels after stopAfter sleeps.
type stubClock struct {
	now       time.Time
	stopAfter int
	sleeps    int
	cancel    context.CancelFunc
	onSleep   func()
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) Sleep(ctx context.Context, d time.Duration) bool {
	c.sleeps++
	if c.onSleep != nil {
		c.onSleep()
	}
	if c.stopAfter > 0 && c.sleeps >= c.stopAfter && c.cancel != nil {
		c.cancel()
	}
	if ctx.Err() != nil {
		return false
	}
	c.now = c.now.Add(time.Second)
	return true
}

// criticalObs records critical log messages and discards everything else.
type criticalObs struct {
	criticals []string
}

func (o *criticalObs) LogInfo(string, ...Field)         {}
func (o *criticalObs) LogError(string, error, ...Field) {}
func (o *criticalObs) LogCritical(msg string, _ error, _ ...Field) {
	o.criticals = append(o.criticals, msg)
}
func (o *criticalObs) IncCounter(string, float64)     {}
func (o *criticalObs) ObserveLatency(string, float64) {}
func (o *criticalObs) SetGauge(string, float64)       {}
func (o *criticalObs) RecordSample(*Sample)           {}
