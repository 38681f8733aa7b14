package cipherpulse

import (
	"context"
	"fmt"
	"io"
)

// Flow is a convenience builder that lets callers say Conf → In → Out without
// touching the underlying wiring.
type Flow struct {
	cfg  *Config
	opts []SessionOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// InOption configures the measurement side: counters, clock, observability.
type InOption func(*Flow)

// OutOption configures what happens to the series once sampling stops.
type OutOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow
// builder. An empty path starts from the defaults.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before
// building a session.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends raw SessionOption values for advanced scenarios.
func (f *Flow) Options(opts ...SessionOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// In records measurement-side overrides.
func (f *Flow) In(opts ...InOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Out records export-side overrides and builds a Session ready to run.
func (f *Flow) Out(opts ...OutOption) (*Session, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewSession(f.cfg, f.opts...)
}

// Run builds a session, samples until ctx is cancelled, then exports with the
// configured formats. The series is returned even when exporting fails.
func (f *Flow) Run(ctx context.Context, opts ...OutOption) (TimeSeries, error) {
	s, err := f.Out(opts...)
	if err != nil {
		return nil, err
	}
	defer s.Shutdown(context.Background())

	ts, err := s.Run(ctx)
	if err != nil {
		return ts, err
	}
	_, err = s.Export(ts, f.cfg.Export.Formats)
	return ts, err
}

// WithFlowOptions appends SessionOption values during Conf.
func WithFlowOptions(opts ...SessionOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// InCounterSource samples counters from src instead of procfs.
func InCounterSource(src CounterSource) InOption {
	return func(f *Flow) {
		if f != nil && src != nil {
			f.appendOptions(WithCounterSource(src))
		}
	}
}

// InClock swaps the wall clock.
func InClock(c Clock) InOption {
	return func(f *Flow) {
		if f != nil && c != nil {
			f.appendOptions(WithClock(c))
		}
	}
}

// InObservability overrides the default Prometheus-based observability stack.
func InObservability(obs Observability) InOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// InProgress prints a status line per cycle.
func InProgress(w io.Writer, overwrite bool) InOption {
	return func(f *Flow) {
		if f != nil && w != nil {
			f.appendOptions(WithProgress(w, overwrite))
		}
	}
}

// OutExporter registers exp under format and selects that format.
func OutExporter(format string, exp Exporter) OutOption {
	return func(f *Flow) {
		if f != nil && exp != nil {
			f.appendOptions(WithExporter(format, exp))
			f.selectFormat(format)
		}
	}
}

// OutCallback installs an exporter built from a simple callback function.
func OutCallback(name string, fn SeriesHandler) OutOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(WithExporter(name, NewCallbackExporter(name, fn)))
			f.selectFormat(name)
		}
	}
}

// OutFormats selects built-in formats by name.
func OutFormats(formats ...string) OutOption {
	return func(f *Flow) {
		if f != nil {
			for _, format := range formats {
				f.selectFormat(format)
			}
		}
	}
}

func (f *Flow) selectFormat(format string) {
	for _, existing := range f.cfg.Export.Formats {
		if existing == format {
			return
		}
	}
	f.cfg.Export.Formats = append(f.cfg.Export.Formats, format)
}

func (f *Flow) appendOptions(opts ...SessionOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
