package exporter

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ghalamif/CipherPulse/internal/domain"
	"github.com/ghalamif/CipherPulse/internal/ports"
)

// DefaultBatchSize bounds the rows sent in one INSERT statement.
const DefaultBatchSize = 500

// MaxBatchSize keeps one INSERT within the Postgres limit of 65535 bind
// parameters at ten parameters per row.
const MaxBatchSize = 65535 / 10

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Dialect captures the few places Postgres and SQLite disagree.
type Dialect struct {
	Name      string
	Driver    string
	TimeType  string
	FloatType string
	TextType  string
	// MaxParams is the most bind parameters one statement may carry.
	MaxParams int
	bindVar   func(n int) string
}

var (
	Postgres = Dialect{
		Name:      "timescale",
		Driver:    "postgres",
		TimeType:  "TIMESTAMPTZ",
		FloatType: "DOUBLE PRECISION",
		TextType:  "TEXT",
		MaxParams: 65535,
		bindVar:   func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	SQLite = Dialect{
		Name:      "sqlite",
		Driver:    "sqlite3",
		TimeType:  "TIMESTAMP",
		FloatType: "REAL",
		TextType:  "TEXT",
		MaxParams: 32766,
		bindVar:   func(int) string { return "?" },
	}
)

var sampleColumns = []string{
	"session_id", "seq", "ts", "interval_seconds",
	"encrypt_bps", "decrypt_bps", "net_in_bps", "net_out_bps", "disk_io_bps", "disk_encrypt_bps",
}

type SQLConfig struct {
	Table     string
	BatchSize int
	// SessionID tags every row of one export; a random one is used when nil.
	SessionID uuid.UUID
}

// SQLExporter writes a series into a table keyed by (session_id, seq).
// Re-exporting the same session is a no-op.
type SQLExporter struct {
	db      *sql.DB
	dialect Dialect
	cfg     SQLConfig
}

// OpenSQL opens a handle for d. No connection is made until Export.
func OpenSQL(d Dialect, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s: connection string is required", d.Name)
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	return db, nil
}

func NewSQLExporter(db *sql.DB, d Dialect, cfg SQLConfig) (*SQLExporter, error) {
	if cfg.Table == "" {
		cfg.Table = "cipherpulse_samples"
	}
	if !identRe.MatchString(cfg.Table) {
		return nil, fmt.Errorf("%s: invalid table name %q", d.Name, cfg.Table)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if limit := d.MaxParams / len(sampleColumns); cfg.BatchSize > limit {
		cfg.BatchSize = limit
	}
	if cfg.SessionID == uuid.Nil {
		cfg.SessionID = uuid.New()
	}
	return &SQLExporter{db: db, dialect: d, cfg: cfg}, nil
}

func (e *SQLExporter) Name() string { return e.dialect.Name }

// SessionID is the key shared by every row this exporter writes.
func (e *SQLExporter) SessionID() uuid.UUID { return e.cfg.SessionID }

func (e *SQLExporter) Close() error { return e.db.Close() }

func (e *SQLExporter) Export(ts domain.TimeSeries) (string, error) {
	ref := fmt.Sprintf("%s:%s?session_id=%s", e.dialect.Name, e.cfg.Table, e.cfg.SessionID)
	if ts.Len() == 0 {
		return ref, nil
	}

	if _, err := e.db.Exec(e.createTable()); err != nil {
		return "", fmt.Errorf("create table %s: %w", e.cfg.Table, err)
	}

	tx, err := e.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	for start := 0; start < len(ts); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(ts))
		query, args := e.insert(ts[start:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return "", errors.Join(fmt.Errorf("insert rows %d-%d: %w", start+1, end, err), tx.Rollback())
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return ref, nil
}

func (e *SQLExporter) createTable() string {
	d := e.dialect
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s ("+
		"session_id %s NOT NULL, seq BIGINT NOT NULL, ts %s NOT NULL, interval_seconds %s NOT NULL, "+
		"encrypt_bps %[4]s, decrypt_bps %[4]s, net_in_bps %[4]s, net_out_bps %[4]s, disk_io_bps %[4]s, disk_encrypt_bps %[4]s, "+
		"PRIMARY KEY (session_id, seq))",
		e.cfg.Table, d.TextType, d.TimeType, d.FloatType)
}

// insert builds one multi-row INSERT ... ON CONFLICT DO NOTHING.
func (e *SQLExporter) insert(rows domain.TimeSeries) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(e.cfg.Table)
	b.WriteString(" (")
	b.WriteString(strings.Join(sampleColumns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(sampleColumns))
	for i, s := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for c := range sampleColumns {
			if c > 0 {
				b.WriteString(",")
			}
			b.WriteString(e.dialect.bindVar(len(args) + c + 1))
		}
		b.WriteString(")")

		args = append(args,
			e.cfg.SessionID.String(),
			int64(s.Seq),
			s.Timestamp,
			s.IntervalSeconds,
			s.EncryptRate,
			s.DecryptRate,
			s.InboundNetRate,
			s.OutboundNetRate,
			s.DiskIORate,
			s.DiskEncryptRate,
		)
	}

	b.WriteString(" ON CONFLICT (session_id, seq) DO NOTHING")
	return b.String(), args
}

var _ ports.Exporter = (*SQLExporter)(nil)
