package schema

import (
	"slices"
	"strings"
)

// Table is the immutable description of one table at a point in schema
// history: its columns in physical order, its table-level constraints, and
// its indexes. Every transformation method returns a new Table and never
// mutates the receiver, so Versions can share Table values safely.
type Table struct {
	name        string
	columns     []Column
	constraints []TableConstraint
	indexes     []TableIndex
}

// NewTable creates a table description. Duplicate column names and
// duplicate constraint names are schema-definition errors and panic.
func NewTable(name string, columns []Column, constraints []TableConstraint) Table {
	t := Table{
		name:        name,
		columns:     slices.Clone(columns),
		constraints: slices.Clone(constraints),
	}
	for i, c := range t.columns {
		if !c.Type.valid() {
			panicf("column %q of table %q has invalid type %v", c.Name, name, c.Type)
		}
		for _, other := range t.columns[:i] {
			if other.Name == c.Name {
				panicf("duplicate column %q in table %q", c.Name, name)
			}
		}
	}
	for i, tc := range t.constraints {
		if tc.Name == "" {
			continue
		}
		for _, other := range t.constraints[:i] {
			if other.Name == tc.Name {
				panicf("duplicate constraint %q in table %q", tc.Name, name)
			}
		}
	}
	return t
}

// Name returns the table name.
func (t Table) Name() string { return t.name }

// Columns returns the table's columns in physical order.
func (t Table) Columns() []Column { return slices.Clone(t.columns) }

// Constraints returns the table-level constraints in declaration order.
func (t Table) Constraints() []TableConstraint { return slices.Clone(t.constraints) }

// Indexes returns the table's indexes in declaration order.
func (t Table) Indexes() []TableIndex { return slices.Clone(t.indexes) }

// ColumnNames returns the column names in physical order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

func (t Table) indexOfColumn(name string) int {
	return slices.IndexFunc(t.columns, func(c Column) bool { return c.Name == name })
}

// ColumnNamed returns the column with the given name.
func (t Table) ColumnNamed(name string) (Column, bool) {
	if i := t.indexOfColumn(name); i >= 0 {
		return t.columns[i], true
	}
	return Column{}, false
}

// ContainsColumn reports whether a column with the given name exists.
func (t Table) ContainsColumn(name string) bool {
	return t.indexOfColumn(name) >= 0
}

func (t Table) indexOfConstraint(name string) int {
	return slices.IndexFunc(t.constraints, func(tc TableConstraint) bool { return tc.Name == name && name != "" })
}

func (t Table) indexOfIndex(name string) int {
	return slices.IndexFunc(t.indexes, func(ix TableIndex) bool { return ix.Name == name })
}

// IndexNamed returns the index with the given name.
func (t Table) IndexNamed(name string) (TableIndex, bool) {
	if i := t.indexOfIndex(name); i >= 0 {
		return t.indexes[i], true
	}
	return TableIndex{}, false
}

// ContainsIndex reports whether an index with the given name exists.
func (t Table) ContainsIndex(name string) bool {
	return t.indexOfIndex(name) >= 0
}

// AddColumn returns a new Table with the column appended. Panics if a
// column with the same name already exists.
func (t Table) AddColumn(c Column) Table {
	if t.indexOfColumn(c.Name) >= 0 {
		panicf("table %q already has a column named %q", t.name, c.Name)
	}
	if !c.Type.valid() {
		panicf("column %q of table %q has invalid type %v", c.Name, t.name, c.Type)
	}
	t.columns = append(slices.Clone(t.columns), c)
	return t
}

// AlterColumn returns a new Table with the named column replaced. If the
// replacement renames the column, the rename is propagated into every
// index that references it. Panics if the column does not exist or the
// new name collides with another column.
func (t Table) AlterColumn(name string, c Column) Table {
	i := t.indexOfColumn(name)
	if i < 0 {
		panicf("table %q has no column named %q", t.name, name)
	}
	if c.Name != name && t.indexOfColumn(c.Name) >= 0 {
		panicf("table %q already has a column named %q", t.name, c.Name)
	}
	if !c.Type.valid() {
		panicf("column %q of table %q has invalid type %v", c.Name, t.name, c.Type)
	}
	t.columns = slices.Clone(t.columns)
	t.columns[i] = c
	if c.Name != name {
		indexes := slices.Clone(t.indexes)
		for j, ix := range indexes {
			if ix.references(name) {
				indexes[j] = ix.renamedColumn(name, c.Name)
			}
		}
		t.indexes = indexes
	}
	return t
}

// DropColumn returns a new Table without the named column. Any index that
// references the column is dropped with it. Panics if the column does not
// exist.
func (t Table) DropColumn(name string) Table {
	i := t.indexOfColumn(name)
	if i < 0 {
		panicf("table %q has no column named %q", t.name, name)
	}
	t.columns = slices.Delete(slices.Clone(t.columns), i, i+1)
	var indexes []TableIndex
	for _, ix := range t.indexes {
		if !ix.references(name) {
			indexes = append(indexes, ix)
		}
	}
	t.indexes = indexes
	return t
}

// AddConstraint returns a new Table with the constraint appended. Panics
// if the constraint is named and the name is already taken.
func (t Table) AddConstraint(tc TableConstraint) Table {
	if tc.Name != "" && t.indexOfConstraint(tc.Name) >= 0 {
		panicf("table %q already has a constraint named %q", t.name, tc.Name)
	}
	t.constraints = append(slices.Clone(t.constraints), tc)
	return t
}

// DropConstraintNamed returns a new Table without the named constraint.
// Panics if no constraint has that name.
func (t Table) DropConstraintNamed(name string) Table {
	i := t.indexOfConstraint(name)
	if i < 0 {
		panicf("table %q has no constraint named %q", t.name, name)
	}
	t.constraints = slices.Delete(slices.Clone(t.constraints), i, i+1)
	return t
}

// DropConstraint returns a new Table without the first unnamed constraint
// whose clause matches exactly. Panics if none matches.
func (t Table) DropConstraint(clause string) Table {
	i := slices.IndexFunc(t.constraints, func(tc TableConstraint) bool {
		return tc.Name == "" && tc.Clause == clause
	})
	if i < 0 {
		panicf("table %q has no constraint with clause %q", t.name, clause)
	}
	t.constraints = slices.Delete(slices.Clone(t.constraints), i, i+1)
	return t
}

// DropAllConstraints returns a new Table with no table-level constraints.
func (t Table) DropAllConstraints() Table {
	t.constraints = nil
	return t
}

// AddIndex returns a new Table with the index appended. Panics if the
// index does not belong to this table, names a nonexistent column, or
// duplicates an existing index name.
func (t Table) AddIndex(ix TableIndex) Table {
	if ix.TableName != t.name {
		panicf("index %q is declared on table %q, not %q", ix.Name, ix.TableName, t.name)
	}
	if t.indexOfIndex(ix.Name) >= 0 {
		panicf("table %q already has an index named %q", t.name, ix.Name)
	}
	if len(ix.Columns) == 0 {
		panicf("index %q on table %q has no columns", ix.Name, t.name)
	}
	for _, col := range ix.Columns {
		if t.indexOfColumn(col) < 0 {
			panicf("index %q references unknown column %q of table %q", ix.Name, col, t.name)
		}
	}
	t.indexes = append(slices.Clone(t.indexes), ix)
	return t
}

// RenameIndex returns a new Table with the index renamed. Panics if the
// old name does not exist or the new name is taken.
func (t Table) RenameIndex(oldName, newName string) Table {
	i := t.indexOfIndex(oldName)
	if i < 0 {
		panicf("table %q has no index named %q", t.name, oldName)
	}
	if t.indexOfIndex(newName) >= 0 {
		panicf("table %q already has an index named %q", t.name, newName)
	}
	t.indexes = slices.Clone(t.indexes)
	ix := t.indexes[i]
	ix.Name = newName
	t.indexes[i] = ix
	return t
}

// DropIndex returns a new Table without the named index. Panics if the
// index does not exist.
func (t Table) DropIndex(name string) Table {
	i := t.indexOfIndex(name)
	if i < 0 {
		panicf("table %q has no index named %q", t.name, name)
	}
	t.indexes = slices.Delete(slices.Clone(t.indexes), i, i+1)
	return t
}

// Renamed returns a new Table under a new name; every index is rewritten
// to reference the new table name.
func (t Table) Renamed(name string) Table {
	t.name = name
	indexes := slices.Clone(t.indexes)
	for i := range indexes {
		indexes[i].TableName = name
	}
	t.indexes = indexes
	return t
}

// createSQL renders the CREATE TABLE statement for the table under its
// own name. Indexes are created by separate statements.
func (t Table) createSQL() string {
	return t.createSQLNamed(t.name)
}

// createSQLNamed renders the CREATE TABLE statement under an arbitrary
// name; the table-rebuild sequence uses this for its temporary table.
func (t Table) createSQLNamed(name string) string {
	defs := make([]string, 0, len(t.columns)+len(t.constraints))
	for _, c := range t.columns {
		defs = append(defs, c.definition())
	}
	for _, tc := range t.constraints {
		defs = append(defs, tc.definition())
	}
	return "CREATE TABLE " + quoteIdent(name) + " (" + strings.Join(defs, ", ") + ")"
}
