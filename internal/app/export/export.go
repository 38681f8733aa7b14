// Package export selects exporters for a finished session and runs them.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

const (
	FormatPNG       = "png"
	FormatLog       = "log"
	FormatTimescale = "timescale"
	FormatSQLite    = "sqlite"
)

// Formats lists every format an exporter exists for.
var Formats = []string{FormatPNG, FormatLog, FormatTimescale, FormatSQLite}

// Prompt is the interactive question shown when no format is configured.
const Prompt = "Save data as (1) PNG Graph or (2) Log File? Enter 1 or 2: "

// ErrUnrecognizedChoice means the user's answer selected nothing; no artifact
// is produced.
var ErrUnrecognizedChoice = errors.New("export: unrecognized choice")

// ResolveChoice maps a prompt answer onto a format.
func ResolveChoice(answer string) (string, error) {
	switch strings.TrimSpace(answer) {
	case "1":
		return FormatPNG, nil
	case "2":
		return FormatLog, nil
	default:
		return "", ErrUnrecognizedChoice
	}
}

// ParseFormats splits a comma-separated list and rejects unknown names.
func ParseFormats(list string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !Known(f) {
			return nil, fmt.Errorf("export: unknown format %q", f)
		}
		out = append(out, f)
	}
	return out, nil
}

func Known(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Artifact is where one exporter wrote the series.
type Artifact struct {
	Format   string
	Location string
}

// Run invokes the exporter for each format exactly once, in order. Failures
// do not stop later exporters; they are logged and joined into the result.
func Run(ts domain.TimeSeries, formats []string, registry map[string]ports.Exporter, obs ports.Observability) ([]Artifact, error) {
	var (
		artifacts []Artifact
		errs      []error
		seen      = make(map[string]bool, len(formats))
	)
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true

		exp, ok := registry[f]
		if !ok {
			err := fmt.Errorf("export: no exporter for format %q", f)
			obs.LogError("export_failed", err, ports.Field{Key: "format", Value: f})
			errs = append(errs, err)
			continue
		}

		loc, err := exp.Export(ts)
		if err != nil {
			err = fmt.Errorf("export %s: %w", f, err)
			obs.LogError("export_failed", err, ports.Field{Key: "format", Value: f})
			errs = append(errs, err)
			continue
		}
		obs.LogInfo("export_done",
			ports.Field{Key: "format", Value: f},
			ports.Field{Key: "location", Value: loc},
			ports.Field{Key: "samples", Value: ts.Len()})
		artifacts = append(artifacts, Artifact{Format: f, Location: loc})
	}
	return artifacts, errors.Join(errs...)
}
