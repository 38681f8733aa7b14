package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

func newTestObs(t *testing.T) (*PromObs, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := &log.Logger{Level: log.DebugLevel, Writer: &log.IOWriter{Writer: &buf}}
	return NewPromObs(prometheus.NewRegistry(), logger), &buf
}

func TestPromObsMetrics(t *testing.T) {
	obs, _ := newTestObs(t)

	obs.IncCounter(ProbeFailuresTotal, 2)
	if got := testutil.ToFloat64(obs.counters[ProbeFailuresTotal]); got != 2 {
		t.Fatalf("expected probe failure counter 2, got %f", got)
	}

	obs.SetGauge(CycleIntervalSeconds, 2.5)
	if got := testutil.ToFloat64(obs.gauges[CycleIntervalSeconds]); got != 2.5 {
		t.Fatalf("expected interval gauge 2.5, got %f", got)
	}

	obs.SetGauge(SeriesSamples, 7)
	if got := testutil.ToFloat64(obs.gauges[SeriesSamples]); got != 7 {
		t.Fatalf("expected series gauge 7, got %f", got)
	}

	obs.ObserveLatency(CycleDurationSeconds, 2.1)
	hCollector := obs.histos[CycleDurationSeconds].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected cycle duration histogram to record 1 sample, got %d", samples)
	}

	obs.IncCounter("not_a_metric", 1)
	obs.SetGauge("not_a_metric", 1)
}

func TestPromObsRecordSample(t *testing.T) {
	obs, buf := newTestObs(t)

	s := &domain.Sample{Seq: 1, IntervalSeconds: 3.2, EncryptRate: 100, DiskIORate: 42}
	obs.RecordSample(s)
	obs.RecordSample(nil)

	if got := testutil.ToFloat64(obs.counters[CyclesTotal]); got != 1 {
		t.Fatalf("expected cycles counter 1, got %f", got)
	}
	if got := testutil.ToFloat64(obs.channels.WithLabelValues("encrypt")); got != 100 {
		t.Fatalf("expected encrypt gauge 100, got %f", got)
	}
	if got := testutil.ToFloat64(obs.channels.WithLabelValues("disk_io")); got != 42 {
		t.Fatalf("expected disk_io gauge 42, got %f", got)
	}
	if n := testutil.CollectAndCount(obs.channels); n != len(domain.Channels) {
		t.Fatalf("expected %d channel series, got %d", len(domain.Channels), n)
	}
	if !strings.Contains(buf.String(), "sample_recorded") {
		t.Fatalf("expected debug log for recorded sample, got %q", buf.String())
	}
}

func TestPromObsLogsErrorsWithFields(t *testing.T) {
	obs, buf := newTestObs(t)

	obs.LogError("storage_probe_failed", errors.New("permission denied"), ports.Field{Key: "path", Value: "/data"})

	out := buf.String()
	for _, want := range []string{"storage_probe_failed", "permission denied", `"path":"/data"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output %q", want, out)
		}
	}
}
