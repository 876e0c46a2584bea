package db

import (
	"context"
	"database/sql"
	"fmt"
)

// UserVersion reads the database's persisted schema version number
// (PRAGMA user_version). A freshly created database reports 0.
func (d *Database) UserVersion(ctx context.Context) (int, error) {
	if d.conn == nil {
		return 0, ErrClosed
	}
	var version int
	if err := d.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("db: failed to read user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion writes the database's persisted schema version number.
// The value is stored in the database header and participates in the
// enclosing transaction, if any.
func (d *Database) SetUserVersion(ctx context.Context, version int) error {
	// PRAGMA values cannot be bound as parameters.
	_, err := d.Exec(ctx, fmt.Sprintf("PRAGMA user_version = %d", version))
	if err != nil {
		return fmt.Errorf("db: failed to set user_version to %d: %w", version, err)
	}
	return nil
}

// ForeignKeysEnabled reports whether foreign-key enforcement is enabled on
// this connection.
func (d *Database) ForeignKeysEnabled(ctx context.Context) (bool, error) {
	if d.conn == nil {
		return false, ErrClosed
	}
	var enabled int
	if err := d.conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return false, fmt.Errorf("db: failed to read foreign_keys pragma: %w", err)
	}
	return enabled != 0, nil
}

// SetForeignKeysEnabled turns foreign-key enforcement on or off for this
// connection. Has no effect inside an open transaction, so callers must
// flip it before BEGIN.
func (d *Database) SetForeignKeysEnabled(ctx context.Context, enabled bool) error {
	value := "OFF"
	if enabled {
		value = "ON"
	}
	if _, err := d.Exec(ctx, "PRAGMA foreign_keys = "+value); err != nil {
		return fmt.Errorf("db: failed to set foreign_keys pragma: %w", err)
	}
	return nil
}

// ForeignKeyViolation is one row reported by PRAGMA foreign_key_check.
type ForeignKeyViolation struct {
	// Table is the table containing the violating row.
	Table string
	// RowID is the rowid of the violating row; nil for WITHOUT ROWID tables.
	RowID *int64
	// Parent is the table the unsatisfied foreign key refers to.
	Parent string
	// ForeignKeyIndex identifies which foreign key of Table failed, by its
	// position in PRAGMA foreign_key_list.
	ForeignKeyIndex int64
}

func (v ForeignKeyViolation) String() string {
	if v.RowID != nil {
		return fmt.Sprintf("%s rowid %d -> %s (fk %d)", v.Table, *v.RowID, v.Parent, v.ForeignKeyIndex)
	}
	return fmt.Sprintf("%s -> %s (fk %d)", v.Table, v.Parent, v.ForeignKeyIndex)
}

// ForeignKeyCheck runs PRAGMA foreign_key_check over the whole database
// and returns every violating row. The check works even while enforcement
// is disabled.
func (d *Database) ForeignKeyCheck(ctx context.Context) ([]ForeignKeyViolation, error) {
	rows, err := d.Query(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return nil, fmt.Errorf("db: failed to run foreign_key_check: %w", err)
	}
	defer rows.Close()

	var violations []ForeignKeyViolation
	for rows.Next() {
		var v ForeignKeyViolation
		var rowID sql.NullInt64
		if err := rows.Scan(&v.Table, &rowID, &v.Parent, &v.ForeignKeyIndex); err != nil {
			return nil, fmt.Errorf("db: failed to scan foreign_key_check row: %w", err)
		}
		if rowID.Valid {
			v.RowID = &rowID.Int64
		}
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: error iterating foreign_key_check rows: %w", err)
	}
	return violations, nil
}
