package clock

import (
	"context"
	"testing"
	"time"
)

func TestSystemSleepCompletes(t *testing.T) {
	if !(System{}).Sleep(context.Background(), time.Millisecond) {
		t.Fatalf("expected full sleep to report true")
	}
}

func TestSystemSleepInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if (System{}).Sleep(ctx, time.Minute) {
		t.Fatalf("expected cancelled sleep to report false")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancelled sleep did not return promptly")
	}
	if (System{}).Sleep(ctx, 0) {
		t.Fatalf("zero sleep on a done context should report false")
	}
}
