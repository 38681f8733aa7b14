package export

import (
	"errors"
	"testing"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

func TestResolveChoice(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"1", FormatPNG, nil},
		{"2\n", FormatLog, nil},
		{" 1 ", FormatPNG, nil},
		{"3", "", ErrUnrecognizedChoice},
		{"", "", ErrUnrecognizedChoice},
		{"png", "", ErrUnrecognizedChoice},
	}
	for _, tc := range cases {
		got, err := ResolveChoice(tc.in)
		if !errors.Is(err, tc.err) || got != tc.want {
			t.Fatalf("ResolveChoice(%q) = %q, %v; want %q, %v", tc.in, got, err, tc.want, tc.err)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("png, LOG,,sqlite")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 3 || got[0] != FormatPNG || got[1] != FormatLog || got[2] != FormatSQLite {
		t.Fatalf("unexpected formats %v", got)
	}
	if _, err := ParseFormats("png,pdf"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestRunInvokesEachExporterOnce(t *testing.T) {
	png := &stubExporter{name: FormatPNG, loc: "a.png"}
	logExp := &stubExporter{name: FormatLog, loc: "a.log"}
	registry := map[string]ports.Exporter{FormatPNG: png, FormatLog: logExp}

	ts := domain.TimeSeries{{Seq: 1}, {Seq: 2}}
	artifacts, err := Run(ts, []string{FormatLog, FormatPNG, FormatLog}, registry, &stubObs{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if png.calls != 1 || logExp.calls != 1 {
		t.Fatalf("expected one call each, got png=%d log=%d", png.calls, logExp.calls)
	}
	if len(artifacts) != 2 || artifacts[0].Location != "a.log" || artifacts[1].Location != "a.png" {
		t.Fatalf("unexpected artifacts %+v", artifacts)
	}
	if png.got.Len() != 2 {
		t.Fatalf("exporter saw %d samples, want 2", png.got.Len())
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := &stubExporter{name: FormatPNG, err: boom}
	logExp := &stubExporter{name: FormatLog, loc: "a.log"}
	obs := &stubObs{}

	artifacts, err := Run(nil, []string{FormatPNG, FormatLog, FormatSQLite},
		map[string]ports.Exporter{FormatPNG: failing, FormatLog: logExp}, obs)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap exporter failure, got %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].Format != FormatLog {
		t.Fatalf("expected log artifact to survive, got %+v", artifacts)
	}
	if obs.errors != 2 {
		t.Fatalf("expected 2 logged errors, got %d", obs.errors)
	}
}

type stubExporter struct {
	name  string
	loc   string
	err   error
	calls int
	got   domain.TimeSeries
}

func (s *stubExporter) Name() string { return s.name }

func (s *stubExporter) Export(ts domain.TimeSeries) (string, error) {
	s.calls++
	s.got = ts
	return s.loc, s.err
}

type stubObs struct{ errors int }

func (s *stubObs) LogInfo(string, ...ports.Field)            {}
func (s *stubObs) LogError(string, error, ...ports.Field)    { s.errors++ }
func (s *stubObs) LogCritical(string, error, ...ports.Field) {}
func (s *stubObs) IncCounter(string, float64)                {}
func (s *stubObs) ObserveLatency(string, float64)            {}
func (s *stubObs) SetGauge(string, float64)                  {}
func (s *stubObs) RecordSample(*domain.Sample)               {}
