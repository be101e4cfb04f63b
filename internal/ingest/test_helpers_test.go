package ingest

// Shared fixtures for the writer, checkpoint, and runner tests. Everything
// that touches a database runs against a throwaway SQLite destination with
// the reference schema applied.

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	sqldocs "leakloader/docs/schema/sql"
	"leakloader/internal/dest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *dest.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dest.Open(ctx, dest.Config{
		Driver: dest.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "oldb.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite destination: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range sqldocs.SplitStatements(sqldocs.SQLite) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return db
}

// pinConn reserves the pool's single connection for the test, the way a
// load run does. Queries issued while it is held must go through it.
func pinConn(t *testing.T, db *dest.DB) *sql.Conn {
	t.Helper()
	conn, err := db.Conn(context.Background())
	if err != nil {
		t.Fatalf("pin connection: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func tableCount(t *testing.T, q querier, table string) int64 {
	t.Helper()
	var n int64
	if err := q.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
