// Package sqlite opens a local SQLite destination via the pure-Go driver.
// It backs small local runs and the end-to-end test suite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Open creates or opens the database file at path and verifies connectivity.
// The pool is capped at one connection: SQLite allows a single writer and the
// load run is strictly sequential anyway.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "oldb.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
