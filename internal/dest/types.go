// Package dest opens the destination database and re-exports the driver
// abstractions shared by the ingestion pipeline.
package dest

import (
	"database/sql"
	"strconv"
)

// Driver identifies a destination database engine.
type Driver string

const (
	// DriverPostgres targets a PostgreSQL server via the pgx stdlib driver.
	DriverPostgres Driver = "postgres"
	// DriverSQLite targets a local SQLite file via the pure-Go driver.
	DriverSQLite Driver = "sqlite"
)

// Placeholder returns the bind marker for the 1-based argument position i in
// this engine's SQL dialect.
func (d Driver) Placeholder(i int) string {
	if d == DriverPostgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// MaxBindParams returns the engine's hard cap on bind parameters in a single
// statement. Postgres' extended protocol carries the count in a uint16;
// SQLite builds default SQLITE_MAX_VARIABLE_NUMBER to 32766.
func (d Driver) MaxBindParams() int {
	if d == DriverPostgres {
		return 65535
	}
	return 32766
}

// DB is an open destination handle. The embedded pool is shared; a load run
// pins one connection from it for the run's lifetime.
type DB struct {
	*sql.DB
	kind   Driver
	origin string
}

// Kind returns the destination engine.
func (d *DB) Kind() Driver { return d.kind }

// CredentialOrigin names the chain link that produced the connection
// credential ("explicit", "loader-default", an env var, "passfile", or
// "none" for engines without credentials). Logged, never the secret itself.
func (d *DB) CredentialOrigin() string { return d.origin }
