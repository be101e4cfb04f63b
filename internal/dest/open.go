package dest

import (
	"context"
	"fmt"

	infraPostgres "leakloader/internal/infra/dest/postgres"
	infraSQLite "leakloader/internal/infra/dest/sqlite"
)

// PostgresConfig re-exports the infra connection parameter type.
type PostgresConfig = infraPostgres.Config

// ErrNoCredentials indicates the postgres credential chain was exhausted.
// It is fatal at startup, before any table is touched.
var ErrNoCredentials = infraPostgres.ErrNoCredentials

// Config selects and parameterizes a destination engine.
type Config struct {
	Driver   Driver
	Postgres PostgresConfig
	// Path is the database file when Driver is sqlite.
	Path string
}

// Open constructs the destination cfg describes. An empty driver defaults to
// postgres.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverPostgres
	}
	switch driver {
	case DriverPostgres:
		db, origin, err := infraPostgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db, kind: DriverPostgres, origin: origin}, nil
	case DriverSQLite:
		db, err := infraSQLite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db, kind: DriverSQLite, origin: "none"}, nil
	default:
		return nil, fmt.Errorf("unknown destination driver %q", driver)
	}
}
