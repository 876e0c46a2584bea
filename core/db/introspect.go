package db

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// TableNames returns the names of user tables, in name order. The engine's
// own sqlite_* tables are skipped.
func (d *Database) TableNames(ctx context.Context) ([]string, error) {
	return d.masterNames(ctx, "table")
}

// IndexNames returns the names of explicitly created user indexes, in name
// order. Auto-generated indexes (which have no SQL text) are skipped.
func (d *Database) IndexNames(ctx context.Context) ([]string, error) {
	return d.masterNames(ctx, "index")
}

func (d *Database) masterNames(ctx context.Context, kind string) ([]string, error) {
	rows, err := d.Query(ctx,
		`SELECT name FROM sqlite_master
		 WHERE type = ? AND sql IS NOT NULL AND name NOT LIKE 'sqlite_%'
		 ORDER BY name`, kind)
	if err != nil {
		return nil, fmt.Errorf("db: failed to query sqlite_master: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db: failed to scan sqlite_master name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: error iterating sqlite_master: %w", err)
	}
	return names, nil
}

// TableExists reports whether a user table with the given name exists.
func (d *Database) TableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := d.QueryRow(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("db: failed to check table %s: %w", name, err)
	}
	return count > 0, nil
}

// ColumnNames returns the column names of a table in physical order, via
// PRAGMA table_info.
func (d *Database) ColumnNames(ctx context.Context, table string) ([]string, error) {
	rows, err := d.Query(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("db: failed to read table_info for %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		// table_info columns: cid, name, type, notnull, dflt_value, pk
		var cid int
		var name, typ string
		var notNull int
		var dflt any
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("db: failed to scan table_info row for %s: %w", table, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db: error iterating table_info for %s: %w", table, err)
	}
	if names == nil {
		return nil, fmt.Errorf("db: no such table: %s", table)
	}
	return names, nil
}

// SchemaFingerprint returns a BLAKE3 digest of the live schema: every user
// table, index, trigger, and view definition recorded in sqlite_master, in
// a stable order. Two databases whose schemas were produced by the same
// migration history fingerprint identically.
func (d *Database) SchemaFingerprint(ctx context.Context) (string, error) {
	rows, err := d.Query(ctx,
		`SELECT type, name, tbl_name, COALESCE(sql, '') FROM sqlite_master
		 WHERE name NOT LIKE 'sqlite_%'
		 ORDER BY type, name`)
	if err != nil {
		return "", fmt.Errorf("db: failed to query sqlite_master: %w", err)
	}
	defer rows.Close()

	hasher := blake3.New()
	for rows.Next() {
		var kind, name, tableName, sqlText string
		if err := rows.Scan(&kind, &name, &tableName, &sqlText); err != nil {
			return "", fmt.Errorf("db: failed to scan sqlite_master row: %w", err)
		}
		for _, field := range []string{kind, name, tableName, sqlText} {
			hasher.WriteString(field)
			hasher.WriteString("\x00")
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("db: error iterating sqlite_master: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
