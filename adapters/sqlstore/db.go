// Package sqlstore keeps the validation ledger in a SQL database through
// sqlx. Postgres (lib/pq) and sqlite (modernc) share one schema.
package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"gomeasure/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported database driver %q", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to connect to %s", driver), err)
	}
	if driver == DriverSQLite && strings.Contains(dsn, ":memory:") {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
