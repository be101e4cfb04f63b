package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leakloader/internal/dest"
	"leakloader/pkg/oldb"
)

// batchWriter inserts batches of one table's records over a pinned
// connection. Each flush runs in its own transaction so a failed batch
// rolls back whole and earlier batches stay committed.
type batchWriter struct {
	conn    *sql.Conn
	dialect dest.Driver
	table   oldb.Table
	policy  Policy
	log     *slog.Logger

	seen    int64 // rows handed to flush, committed or not
	written int64 // rows committed
	lost    int64 // rows dropped with failed batches under skip
	batches int   // committed batches
	failed  int   // failed batches
}

func newBatchWriter(conn *sql.Conn, dialect dest.Driver, table oldb.Table, policy Policy, log *slog.Logger) *batchWriter {
	return &batchWriter{
		conn:    conn,
		dialect: dialect,
		table:   table,
		policy:  policy,
		log:     log,
	}
}

func (w *batchWriter) flush(ctx context.Context, batch []oldb.Record) error {
	if len(batch) == 0 {
		return nil
	}
	first := w.seen + 1
	last := w.seen + int64(len(batch))
	w.seen = last

	start := time.Now()
	err := w.insert(ctx, batch)
	batchDuration.WithLabelValues(w.table.Name).Observe(time.Since(start).Seconds())
	if err == nil {
		w.written += int64(len(batch))
		w.batches++
		rowsWritten.WithLabelValues(w.table.Name).Add(float64(len(batch)))
		batchesCommitted.WithLabelValues(w.table.Name).Inc()
		w.log.Info("batch committed",
			"table", w.table.Name,
			"rows", len(batch),
			"total_rows", w.written,
		)
		return nil
	}

	w.failed++
	batchesFailed.WithLabelValues(w.table.Name).Inc()
	if w.policy == PolicyAbort {
		return fmt.Errorf("%s rows %d-%d: %w", w.table.Name, first, last, err)
	}
	w.lost += int64(len(batch))
	rowsSkipped.WithLabelValues(w.table.Name).Add(float64(len(batch)))
	w.log.Warn("batch failed, skipping",
		"table", w.table.Name,
		"first_row", first,
		"last_row", last,
		"error", err,
	)
	return nil
}

// insert writes the batch in one transaction. Statements are chunked so no
// single INSERT exceeds the engine's bind parameter cap; the transaction
// keeps the batch atomic across chunks.
func (w *batchWriter) insert(ctx context.Context, batch []oldb.Record) error {
	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cols := len(w.table.Columns)
	maxRows := w.dialect.MaxBindParams() / cols
	for offset := 0; offset < len(batch); offset += maxRows {
		end := offset + maxRows
		if end > len(batch) {
			end = len(batch)
		}
		chunk := batch[offset:end]
		args := make([]any, 0, len(chunk)*cols)
		for _, rec := range chunk {
			args = append(args, rec.Values()...)
		}
		if _, err := tx.ExecContext(ctx, w.insertSQL(len(chunk)), args...); err != nil {
			return fmt.Errorf("insert %s: %w", w.table.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", w.table.Name, err)
	}
	committed = true
	return nil
}

func (w *batchWriter) insertSQL(rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(w.table.Name)
	b.WriteString(" (")
	b.WriteString(strings.Join(w.table.Columns, ", "))
	b.WriteString(") VALUES ")
	arg := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < len(w.table.Columns); c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(w.dialect.Placeholder(arg))
			arg++
		}
		b.WriteByte(')')
	}
	return b.String()
}
