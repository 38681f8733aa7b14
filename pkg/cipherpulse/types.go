package cipherpulse

import (
	"github.com/ghalamif/CipherPulse/internal/app/export"
	"github.com/ghalamif/CipherPulse/internal/app/summary"
	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

// Sample is one measurement cycle: six byte/second channels plus the measured
// interval since the previous cycle.
type Sample = domain.Sample

// TimeSeries is the ordered history of a session.
type TimeSeries = domain.TimeSeries

// Channel names one throughput column of a Sample.
type Channel = domain.Channel

// CounterSnapshot holds cumulative network and disk byte counters.
type CounterSnapshot = domain.CounterSnapshot

// CounterSource reads OS counters; swap it to sample something other than the
// local host.
type CounterSource = ports.CounterSource

// Transform is the symmetric cipher being benchmarked.
type Transform = ports.Transform

// Exporter turns a finished TimeSeries into an artifact.
type Exporter = ports.Exporter

// Observability emits logs and metrics about the sampling loop.
type Observability = ports.Observability

// Field is a structured log/metric field used by Observability implementations.
type Field = ports.Field

// Clock supplies time and the cancellable inter-cycle sleep.
type Clock = ports.Clock

// Artifact is where an exporter wrote the series.
type Artifact = export.Artifact

// Summary holds per-channel quantiles of a finished session.
type Summary = summary.Report

// Export formats understood by Session.Export.
const (
	FormatPNG       = export.FormatPNG
	FormatLog       = export.FormatLog
	FormatTimescale = export.FormatTimescale
	FormatSQLite    = export.FormatSQLite
)

// Channels in export column order.
const (
	ChannelEncrypt     = domain.ChannelEncrypt
	ChannelDecrypt     = domain.ChannelDecrypt
	ChannelInbound     = domain.ChannelInbound
	ChannelOutbound    = domain.ChannelOutbound
	ChannelDiskIO      = domain.ChannelDiskIO
	ChannelDiskEncrypt = domain.ChannelDiskEncrypt
)

// ExportPrompt is the question asked when no export format is configured.
const ExportPrompt = export.Prompt

// ErrUnrecognizedChoice is returned by ResolveChoice for answers other than 1
// or 2.
var ErrUnrecognizedChoice = export.ErrUnrecognizedChoice

// ResolveChoice maps an interactive prompt answer onto a format.
func ResolveChoice(answer string) (string, error) {
	return export.ResolveChoice(answer)
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(list string) ([]string, error) {
	return export.ParseFormats(list)
}
