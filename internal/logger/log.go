package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/phuslu/log"
)

// Config selects level, output format and an optional rotating file.
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console, logfmt, json
	File   string `yaml:"file"`
	Color  bool   `yaml:"color"`
}

func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
}

// parseLevel maps config strings onto phuslu levels, defaulting to info.
func parseLevel(level string) log.Level {
	switch level {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New builds a logger that writes to stderr, or to cfg.File when set. Stdout
// is left to the progress line and the export prompt.
func New(cfg Config) (*log.Logger, error) {
	cfg.ApplyDefaults()

	writer, err := newWriter(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	return &log.Logger{
		Level:      parseLevel(cfg.Level),
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Writer:     writer,
	}, nil
}

// Nop discards everything; handy for tests and library callers that bring
// their own observability.
func Nop() *log.Logger {
	return &log.Logger{Level: log.PanicLevel + 1, Writer: &log.IOWriter{Writer: io.Discard}}
}

func newWriter(cfg Config, stderr io.Writer) (log.Writer, error) {
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		return &log.FileWriter{
			Filename:   cfg.File,
			FileMode:   0o644,
			MaxSize:    50 * 1024 * 1024,
			MaxBackups: 5,
			LocalTime:  true,
		}, nil
	}

	switch cfg.Format {
	case "json":
		return &log.IOWriter{Writer: stderr}, nil
	case "logfmt":
		return &log.ConsoleWriter{
			Formatter: log.LogfmtFormatter{TimeField: "time"}.Formatter,
			Writer:    stderr,
		}, nil
	default:
		return &log.ConsoleWriter{
			ColorOutput:    cfg.Color,
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         stderr,
		}, nil
	}
}
