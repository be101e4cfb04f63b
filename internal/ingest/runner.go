// Package ingest drives the bulk load of the ICIJ Offshore Leaks CSV dumps:
// it streams rows from a source store, normalizes fields, writes batches
// over a single pinned connection, and gates every table on a row-count
// checkpoint so a rerun against a loaded destination is a cheap no-op.
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"leakloader/internal/dest"
	"leakloader/internal/source"
)

// DefaultBatchSize is the number of source rows buffered per transaction.
const DefaultBatchSize = 5000

// Status classifies a table's outcome within one run.
type Status string

const (
	// StatusLoaded means the table was empty and rows were written.
	StatusLoaded Status = "loaded"
	// StatusSkipped means the checkpoint found existing rows.
	StatusSkipped Status = "skipped"
	// StatusFailed means the table's load terminated the run.
	StatusFailed Status = "failed"
)

// TableResult is one table's outcome within a run.
type TableResult struct {
	Table         string `json:"table"`
	Status        Status `json:"status"`
	Rows          int64  `json:"rows"`
	LostRows      int64  `json:"lost_rows,omitempty"`
	FailedBatches int    `json:"failed_batches,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
}

// Summary is the run manifest: identity, parameters, and per-table outcomes.
type Summary struct {
	RunID      string        `json:"run_id"`
	Driver     string        `json:"driver"`
	Service    string        `json:"service,omitempty"`
	BatchSize  int           `json:"batch_size"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Tables     []TableResult `json:"tables"`
	TotalRows  int64         `json:"total_rows"`
}

// WriteManifest writes the summary as indented JSON to path.
func (s Summary) WriteManifest(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Options configures a load run.
type Options struct {
	// Source holds the CSV artifacts.
	Source source.Store
	// DB is the open destination.
	DB *dest.DB
	// Log receives run progress. Defaults to a text handler on stderr.
	Log *slog.Logger
	// BatchSize is the rows-per-transaction buffer. Defaults to
	// DefaultBatchSize.
	BatchSize int
	// Policies maps table names to their batch-failure policy. Absent
	// tables skip failed batches.
	Policies map[string]Policy
	// ExpectedRows, when known for a table, arms the partial-table warning.
	ExpectedRows map[string]int64
	// Service is a logical deployment label carried into logs and the
	// manifest. Optional.
	Service string
}

// Runner executes one full load over the fixed table order.
type Runner struct {
	opts  Options
	runID string
}

// NewRunner validates opts and assigns the run its identity.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Source == nil {
		return nil, errors.New("ingest: source store is required")
	}
	if opts.DB == nil {
		return nil, errors.New("ingest: destination database is required")
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Runner{opts: opts, runID: uuid.NewString()}, nil
}

// RunID returns the run's unique identifier.
func (r *Runner) RunID() string { return r.runID }

// Run loads every table in the fixed order, skipping tables the checkpoint
// reports as already loaded. A table failure terminates the run; tables
// committed before it stay in place and are reported in the summary, which
// is returned alongside the error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	log := r.opts.Log.With("run_id", r.runID)
	if r.opts.Service != "" {
		log = log.With("service", r.opts.Service)
	}
	summary := Summary{
		RunID:     r.runID,
		Driver:    string(r.opts.DB.Kind()),
		Service:   r.opts.Service,
		BatchSize: r.opts.BatchSize,
		StartedAt: time.Now().UTC(),
	}
	finish := func() {
		summary.FinishedAt = time.Now().UTC()
		for _, t := range summary.Tables {
			summary.TotalRows += t.Rows
		}
	}

	// The whole run shares one connection so the checkpoint reads and the
	// batch transactions observe the same session.
	conn, err := r.opts.DB.Conn(ctx)
	if err != nil {
		finish()
		return summary, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	log.Info("load run starting",
		"driver", summary.Driver,
		"source", string(r.opts.Source.Driver()),
		"batch_size", r.opts.BatchSize,
	)

	g := guard{conn: conn, expected: r.opts.ExpectedRows, log: log}
	for _, def := range tableDefs() {
		load, existing, err := g.shouldLoad(ctx, def.table)
		if err != nil {
			finish()
			return summary, err
		}
		if !load {
			tablesSkipped.WithLabelValues(def.table.Name).Inc()
			log.Info("table already loaded, skipping",
				"table", def.table.Name,
				"rows", existing,
			)
			summary.Tables = append(summary.Tables, TableResult{
				Table:  def.table.Name,
				Status: StatusSkipped,
				Rows:   existing,
			})
			continue
		}
		result, err := r.loadTable(ctx, conn, log, def)
		summary.Tables = append(summary.Tables, result)
		if err != nil {
			finish()
			return summary, err
		}
	}
	finish()
	log.Info("load run complete", "total_rows", summary.TotalRows)
	return summary, nil
}

func (r *Runner) loadTable(ctx context.Context, conn *sql.Conn, log *slog.Logger, def tableDef) (result TableResult, err error) {
	result = TableResult{Table: def.table.Name, Status: StatusFailed}
	start := time.Now()
	defer func() {
		result.DurationMS = time.Since(start).Milliseconds()
	}()

	info, rc, err := r.opts.Source.Open(ctx, def.table.Artifact)
	if err != nil {
		return result, fmt.Errorf("open %s: %w", def.table.Artifact, err)
	}
	defer func() { _ = rc.Close() }()

	log.Info("loading table",
		"table", def.table.Name,
		"artifact", info.Name,
		"size", humanize.Bytes(uint64(info.Size)),
	)

	rows, err := newRowReader(rc)
	if err != nil {
		return result, fmt.Errorf("read %s: %w", def.table.Artifact, err)
	}

	policy := r.opts.Policies[def.table.Name]
	if policy == "" {
		policy = PolicySkip
	}
	w := newBatchWriter(conn, r.opts.DB.Kind(), def.table, policy, log)
	read, err := loadRows(ctx, rows, def.convert, r.opts.BatchSize, w)
	result.Rows = w.written
	result.LostRows = w.lost
	result.FailedBatches = w.failed
	if err != nil {
		return result, fmt.Errorf("load %s: %w", def.table.Name, err)
	}

	result.Status = StatusLoaded
	log.Info("table loaded",
		"table", def.table.Name,
		"rows_read", read,
		"rows_written", w.written,
		"rows_lost", w.lost,
		"failed_batches", w.failed,
	)
	return result, nil
}
