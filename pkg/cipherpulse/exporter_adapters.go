package cipherpulse

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChannelExporterClosed is returned when a channel exporter is used after
// being closed.
var ErrChannelExporterClosed = errors.New("cipherpulse: channel exporter closed")

// SeriesHandler receives the finished series of a session.
type SeriesHandler func(ts TimeSeries) error

// NewCallbackExporter adapts a SeriesHandler into an Exporter so callers can
// plug arbitrary functions without defining structs.
func NewCallbackExporter(name string, fn SeriesHandler) Exporter {
	if name == "" {
		name = "callback"
	}
	return &callbackExporter{name: name, fn: fn}
}

// NewChannelExporter hands the series over a channel; it returns the exporter,
// the read-only channel, and a close function that the caller should invoke
// during shutdown. Export blocks until the series is received or the exporter
// is closed.
func NewChannelExporter(name string, buffer int) (Exporter, <-chan TimeSeries, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan TimeSeries, buffer)
	e := &channelExporter{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return e, ch, func() { e.close() }
}

type callbackExporter struct {
	name string
	fn   SeriesHandler
}

func (e *callbackExporter) Export(ts TimeSeries) (string, error) {
	if e.fn == nil {
		return "", fmt.Errorf("callback exporter %q: nil handler", e.name)
	}
	if err := e.fn(ts); err != nil {
		return "", err
	}
	return e.name, nil
}

func (e *callbackExporter) Name() string { return e.name }

type channelExporter struct {
	name   string
	ch     chan TimeSeries
	closed chan struct{}
	once   sync.Once
	mu     sync.RWMutex
}

func (e *channelExporter) Export(ts TimeSeries) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	select {
	case <-e.closed:
		return "", ErrChannelExporterClosed
	default:
	}

	select {
	case <-e.closed:
		return "", ErrChannelExporterClosed
	case e.ch <- ts:
		return e.name, nil
	}
}

func (e *channelExporter) Name() string { return e.name }

func (e *channelExporter) close() {
	e.once.Do(func() {
		close(e.closed)
		// wait for in-flight sends to observe closed before closing ch
		e.mu.Lock()
		close(e.ch)
		e.mu.Unlock()
	})
}
