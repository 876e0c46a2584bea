// Package schema implements a declarative, versioned schema-migration
// engine for SQLite.
//
// A Schema is declared once, through a builder block, as an ordered list
// of numbered Versions. Each Version records both the full resolved set of
// tables that exist after it and the ordered list of Transform operations
// that move a database from the previous version to it. At runtime,
// Migrate reads the database's persisted version number (PRAGMA
// user_version) and replays every pending version's transforms inside a
// single transaction.
//
// Because SQLite cannot alter or drop columns and table constraints in
// place, column-level edits compile to a copy-rebuild-swap sequence (see
// AlterTable); referential integrity is verified after every rebuild.
//
// Schema definition runs once at startup and is configuration, not user
// input: misuse of the builder DSL (unknown or duplicate names, dropping
// a table created in the same version) panics immediately with a
// descriptive message. Errors that depend on the database being migrated
// (unknown persisted version, unreachable target, foreign-key violations,
// SQL failures) are returned as typed error values.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nerdyc/Squeal-sub000/internal/sqlutil"
)

// panicf reports a schema-definition precondition violation. Definition
// code runs once at startup, so violations are programmer errors and
// terminate immediately rather than surfacing as recoverable errors.
func panicf(format string, args ...any) {
	panic(fmt.Sprintf("schema: "+format, args...))
}

// quoteIdent escapes a SQL identifier for interpolation.
var quoteIdent = sqlutil.QuoteIdent

// ColumnType is the declared SQLite affinity of a column.
//
// The zero value is deliberately not a valid type: ColumnAlteration uses
// it to mean "leave the type unchanged".
type ColumnType int

const (
	// Text is the TEXT column type.
	Text ColumnType = iota + 1
	// Integer is the INTEGER column type.
	Integer
	// Real is the REAL column type.
	Real
	// Blob is the BLOB column type.
	Blob
)

// String returns the SQL spelling of the column type.
func (t ColumnType) String() string {
	switch t {
	case Text:
		return "TEXT"
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Blob:
		return "BLOB"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

func (t ColumnType) valid() bool {
	return t >= Text && t <= Blob
}

// Column is the immutable description of one table column. Constraints
// are raw SQL clauses (e.g. "NOT NULL", "DEFAULT 0") rendered verbatim
// after the type.
type Column struct {
	Name        string
	Type        ColumnType
	Constraints []string
}

// definition renders the column for a CREATE TABLE or ADD COLUMN statement.
func (c Column) definition() string {
	parts := []string{quoteIdent(c.Name), c.Type.String()}
	parts = append(parts, c.Constraints...)
	return strings.Join(parts, " ")
}

// renamed returns a copy of the column under a new name.
func (c Column) renamed(name string) Column {
	c.Name = name
	c.Constraints = slices.Clone(c.Constraints)
	return c
}

// TableConstraint is a table-level constraint clause, optionally named.
// The clause is raw SQL (e.g. "UNIQUE (a, b)", "FOREIGN KEY (x)
// REFERENCES t(y)") rendered verbatim.
type TableConstraint struct {
	// Name is optional; when set it must be unique within the table.
	Name   string
	Clause string
}

// definition renders the constraint for a CREATE TABLE statement.
func (tc TableConstraint) definition() string {
	if tc.Name != "" {
		return "CONSTRAINT " + quoteIdent(tc.Name) + " " + tc.Clause
	}
	return tc.Clause
}

// TableIndex describes an index on a table. Index names are global in
// SQLite, so Name must be unique across the whole schema, not just the
// owning table.
type TableIndex struct {
	Name      string
	TableName string
	// Columns are the indexed column names, in order. Every column must
	// exist in the owning table at definition time.
	Columns []string
	// Where is an optional partial-index predicate, rendered verbatim.
	Where string
	// Unique makes this a UNIQUE index.
	Unique bool
}

// createSQL renders the CREATE INDEX statement for the index.
func (ix TableIndex) createSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if ix.Unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	sb.WriteString(quoteIdent(ix.Name))
	sb.WriteString(" ON ")
	sb.WriteString(quoteIdent(ix.TableName))
	sb.WriteString(" (")
	sb.WriteString(sqlutil.JoinIdents(ix.Columns))
	sb.WriteString(")")
	if ix.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(ix.Where)
	}
	return sb.String()
}

// references reports whether the index covers the given column.
func (ix TableIndex) references(column string) bool {
	return slices.Contains(ix.Columns, column)
}

// renamedColumn returns a copy of the index with every reference to the
// old column name rewritten to the new one.
func (ix TableIndex) renamedColumn(oldName, newName string) TableIndex {
	columns := slices.Clone(ix.Columns)
	for i, c := range columns {
		if c == oldName {
			columns[i] = newName
		}
	}
	ix.Columns = columns
	return ix
}
