// Package db provides thin access to a SQLite database: statement
// execution, row selection, transactions and savepoints, pragma helpers,
// and schema introspection. It is the surface the migration engine in
// core/schema drives.
//
// A Database wraps a single dedicated connection. SQLite treats pragmas
// and transaction state as per-connection state, so everything the
// migration engine does must happen on one connection; database/sql's
// internal pooling would silently spread statements across connections.
// Use Pool if several independent connections to the same file are needed.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerdyc/Squeal-sub000/core/sqlite"
)

// ErrClosed is returned when an operation is attempted on a closed Database.
var ErrClosed = errors.New("db: database is closed")

// Database is a single dedicated connection to a SQLite database.
type Database struct {
	path  string
	sqldb *sql.DB
	conn  *sql.Conn
}

// Open opens the SQLite database at path and pins one connection to it.
func Open(path string) (*Database, error) {
	sqldb, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("db: failed to open %s: %w", path, err)
	}

	conn, err := sqldb.Conn(context.Background())
	if err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("db: failed to acquire connection for %s: %w", path, err)
	}

	return &Database{path: path, sqldb: sqldb, conn: conn}, nil
}

// OpenInMemory opens a new private in-memory database. The database lives
// as long as the Database's pinned connection and is discarded on Close.
func OpenInMemory() (*Database, error) {
	return Open(":memory:")
}

// Path returns the path the database was opened with.
func (d *Database) Path() string {
	return d.path
}

// Close releases the pinned connection and closes the database.
func (d *Database) Close() error {
	if d.conn == nil {
		return ErrClosed
	}
	connErr := d.conn.Close()
	d.conn = nil
	dbErr := d.sqldb.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}

// Exec executes a statement that returns no rows.
func (d *Database) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if d.conn == nil {
		return nil, ErrClosed
	}
	return d.conn.ExecContext(ctx, query, args...)
}

// Query executes a statement and returns its rows. The caller must close
// the returned rows.
func (d *Database) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if d.conn == nil {
		return nil, ErrClosed
	}
	return d.conn.QueryContext(ctx, query, args...)
}

// QueryRow executes a statement expected to return at most one row.
func (d *Database) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.conn.QueryRowContext(ctx, query, args...)
}

// SelectAll executes a query and returns every row as a column-name map.
// Intended for data migrations and tests, not bulk reads.
func (d *Database) SelectAll(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("db: failed to read columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("db: failed to scan row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: error iterating rows: %w", err)
	}
	return result, nil
}

// CountFrom returns SELECT COUNT(*) for the given table.
func (d *Database) CountFrom(ctx context.Context, table string) (int64, error) {
	var count int64
	err := d.QueryRow(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db: failed to count rows in %s: %w", table, err)
	}
	return count, nil
}
