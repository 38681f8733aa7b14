package cipherpulse

import (
	"io"

	"github.com/phuslu/log"

	base "github.com/ghalamif/CipherPulse/pkg/cipherpulse"
)

// Re-exported errors for convenience.
var (
	ErrChannelExporterClosed = base.ErrChannelExporterClosed
	ErrUnrecognizedChoice    = base.ErrUnrecognizedChoice
)

// Type aliases so consumers can import github.com/ghalamif/CipherPulse directly.
type (
	Config          = base.Config
	SamplerConfig   = base.SamplerConfig
	StorageConfig   = base.StorageConfig
	CountersConfig  = base.CountersConfig
	ExportConfig    = base.ExportConfig
	TimescaleConfig = base.TimescaleConfig
	SQLiteConfig    = base.SQLiteConfig
	MetricsConfig   = base.MetricsConfig
	LogConfig       = base.LogConfig
	Flow            = base.Flow
	FlowOption      = base.FlowOption
	InOption        = base.InOption
	OutOption       = base.OutOption
	Session         = base.Session
	SessionOption   = base.SessionOption
	Sample          = base.Sample
	TimeSeries      = base.TimeSeries
	Channel         = base.Channel
	CounterSnapshot = base.CounterSnapshot
	CounterSource   = base.CounterSource
	Transform       = base.Transform
	Exporter        = base.Exporter
	SeriesHandler   = base.SeriesHandler
	Observability   = base.Observability
	Field           = base.Field
	Clock           = base.Clock
	Artifact        = base.Artifact
	Summary         = base.Summary
	Volume          = base.Volume
)

// Export formats.
const (
	FormatPNG       = base.FormatPNG
	FormatLog       = base.FormatLog
	FormatTimescale = base.FormatTimescale
	FormatSQLite    = base.FormatSQLite
)

// ExportPrompt is the interactive export question.
const ExportPrompt = base.ExportPrompt

// Channels in export column order.
const (
	ChannelEncrypt     = base.ChannelEncrypt
	ChannelDecrypt     = base.ChannelDecrypt
	ChannelInbound     = base.ChannelInbound
	ChannelOutbound    = base.ChannelOutbound
	ChannelDiskIO      = base.ChannelDiskIO
	ChannelDiskEncrypt = base.ChannelDiskEncrypt
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

func ListVolumes(procPath string) ([]Volume, error) {
	return base.ListVolumes(procPath)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...SessionOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func InCounterSource(src CounterSource) InOption {
	return base.InCounterSource(src)
}

func InClock(c Clock) InOption {
	return base.InClock(c)
}

func InObservability(obs Observability) InOption {
	return base.InObservability(obs)
}

func InProgress(w io.Writer, overwrite bool) InOption {
	return base.InProgress(w, overwrite)
}

func OutExporter(format string, exp Exporter) OutOption {
	return base.OutExporter(format, exp)
}

func OutCallback(name string, fn SeriesHandler) OutOption {
	return base.OutCallback(name, fn)
}

func OutFormats(formats ...string) OutOption {
	return base.OutFormats(formats...)
}

// Session and options.
func NewSession(cfg *Config, opts ...SessionOption) (*Session, error) {
	return base.NewSession(cfg, opts...)
}

func WithCounterSource(src CounterSource) SessionOption {
	return base.WithCounterSource(src)
}

func WithObservability(obs Observability) SessionOption {
	return base.WithObservability(obs)
}

func WithClock(c Clock) SessionOption {
	return base.WithClock(c)
}

func WithExporter(format string, exp Exporter) SessionOption {
	return base.WithExporter(format, exp)
}

func WithLogger(l *log.Logger) SessionOption {
	return base.WithLogger(l)
}

func WithProgress(w io.Writer, overwrite bool) SessionOption {
	return base.WithProgress(w, overwrite)
}

func WithEntropy(r io.Reader) SessionOption {
	return base.WithEntropy(r)
}

// Exporter adapters.
func NewCallbackExporter(name string, fn SeriesHandler) Exporter {
	return base.NewCallbackExporter(name, fn)
}

func NewChannelExporter(name string, buffer int) (Exporter, <-chan TimeSeries, func()) {
	return base.NewChannelExporter(name, buffer)
}

// Interactive export helpers.
func ResolveChoice(answer string) (string, error) {
	return base.ResolveChoice(answer)
}

func ParseFormats(list string) ([]string, error) {
	return base.ParseFormats(list)
}
