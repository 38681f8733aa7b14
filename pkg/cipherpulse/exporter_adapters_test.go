package cipherpulse

import (
	"errors"
	"testing"
	"time"
)

func TestNewCallbackExporter(t *testing.T) {
	var received TimeSeries
	exp := NewCallbackExporter("cb", func(ts TimeSeries) error {
		received = append(received, ts...)
		return nil
	})

	input := TimeSeries{{Seq: 42, Timestamp: time.Unix(1, 0), EncryptRate: 3.14}}
	loc, err := exp.Export(input)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if loc != "cb" || exp.Name() != "cb" {
		t.Fatalf("expected exporter name as location, got %q", loc)
	}
	if len(received) != 1 || received[0].Seq != 42 || received[0].EncryptRate != 3.14 {
		t.Fatalf("mismatched series payload: %+v", received)
	}
}

func TestNewCallbackExporterNilHandler(t *testing.T) {
	exp := NewCallbackExporter("", nil)
	if exp.Name() != "callback" {
		t.Fatalf("expected default name callback, got %s", exp.Name())
	}
	if _, err := exp.Export(TimeSeries{{Seq: 1}}); err == nil {
		t.Fatalf("expected error when callback is nil")
	}
}

func TestNewCallbackExporterPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	exp := NewCallbackExporter("cb", func(TimeSeries) error { return boom })
	if _, err := exp.Export(nil); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestNewChannelExporter(t *testing.T) {
	exp, ch, closeFn := NewChannelExporter("chan", 0)
	defer closeFn()

	input := TimeSeries{{Seq: 7}}
	errCh := make(chan error, 1)

	go func() {
		_, err := exp.Export(input)
		errCh <- err
	}()

	var got TimeSeries
	select {
	case got = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for series")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if got.Len() != 1 || got[0].Seq != 7 {
		t.Fatalf("unexpected series: %+v", got)
	}

	closeFn()
	if _, err := exp.Export(input); !errors.Is(err, ErrChannelExporterClosed) {
		t.Fatalf("expected ErrChannelExporterClosed, got %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestChannelExporterCloseUnblocksExport(t *testing.T) {
	exp, _, closeFn := NewChannelExporter("chan", 0)

	errCh := make(chan error, 1)
	go func() {
		_, err := exp.Export(TimeSeries{{Seq: 1}})
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	closeFn()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrChannelExporterClosed) {
			t.Fatalf("expected ErrChannelExporterClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("close did not unblock Export")
	}
}
