// Package sqldocs exposes the reference destination DDL directly from the
// docs tree. The loader never applies it; tests and operators do.
package sqldocs

import (
	"bufio"
	_ "embed"
	"strings"
)

// SQLite contains the reference SQLite DDL for the destination schema.
//
//go:embed sqlite.sql
var SQLite string

// Postgres contains the reference Postgres DDL for the destination schema.
//
//go:embed postgres.sql
var Postgres string

// SplitStatements splits a semicolon-terminated DDL script into executable
// statements. It drops blank lines and single-line comments that start with "--".
func SplitStatements(ddl string) []string {
	scanner := bufio.NewScanner(strings.NewReader(ddl))
	var stmts []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}

	if tail := strings.TrimSpace(current.String()); tail != "" {
		stmts = append(stmts, tail)
	}

	return stmts
}
