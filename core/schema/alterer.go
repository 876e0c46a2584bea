package schema

import "slices"

// ColumnAlteration describes one column edit inside an AlterTable block.
// Any zero-valued field leaves the corresponding attribute unchanged.
type ColumnAlteration struct {
	// RenameTo gives the column a new name. The rename propagates into
	// every index that references the column.
	RenameTo string
	// ChangeTypeTo changes the declared type; the zero ColumnType keeps
	// the current type.
	ChangeTypeTo ColumnType
	// SetConstraints replaces the column's constraint clauses. nil keeps
	// the current clauses; an empty non-nil slice removes them all.
	SetConstraints []string
	// SetValue is the SQL expression computing the column's value from
	// the pre-alteration row during the rebuild. Empty means "carry the
	// value forward unchanged" (the old column reference).
	SetValue string
}

// TableAlterer translates the edits inside one AlterTable block into an
// updated resolved Table and the fewest Transform operations that
// reproduce them against a live database.
//
// Coalescing policy: a bare AddColumn with no pending rebuild is emitted
// as a standalone fast-path AddColumn transform. Every other edit — and
// an AddColumn that supplies an initial value — needs a table rebuild;
// consecutive rebuild-requiring edits accumulate onto a single pending
// AlterTable transform, updating its target shape and per-column value
// expressions each time. A rebuild started after a fast-path add leaves
// the add standalone and baselines the rebuild from the then-current
// shape.
type TableAlterer struct {
	table      Table
	transforms []Transform

	// rowValues mirrors table.columns while a rebuild is pending: the SQL
	// expression computing each target column from the pre-rebuild row.
	rowValues []string
	// pendingIndex is the position of the pending AlterTable transform in
	// transforms, or -1 when no rebuild is pending.
	pendingIndex int
}

func newTableAlterer(t Table) *TableAlterer {
	return &TableAlterer{table: t, pendingIndex: -1}
}

// Table returns the resolved table as edited so far.
func (a *TableAlterer) Table() Table { return a.table }

// ensurePending starts a rebuild from the current table shape if none is
// pending. Every existing column's value expression defaults to its own
// (escaped) name: carry the value forward unchanged.
func (a *TableAlterer) ensurePending() {
	if a.pendingIndex >= 0 {
		return
	}
	a.rowValues = make([]string, len(a.table.columns))
	for i, c := range a.table.columns {
		a.rowValues[i] = quoteIdent(c.Name)
	}
	a.pendingIndex = len(a.transforms)
	a.transforms = append(a.transforms, AlterTable{})
	a.refreshPending()
}

// refreshPending rewrites the pending AlterTable transform from the
// current shape and value expressions.
func (a *TableAlterer) refreshPending() {
	a.transforms[a.pendingIndex] = AlterTable{
		Table:     a.table,
		RowValues: slices.Clone(a.rowValues),
	}
}

// AddColumn appends a column with no initial value. With no rebuild
// pending this is the fast path: a standalone ALTER TABLE ... ADD COLUMN
// transform. With a rebuild pending, the column joins the rebuild and its
// value expression is NULL (there is no pre-rebuild value to carry).
// Panics if the column name is taken.
func (a *TableAlterer) AddColumn(name string, columnType ColumnType, constraints ...string) {
	column := Column{Name: name, Type: columnType, Constraints: constraints}
	tableName := a.table.Name()
	a.table = a.table.AddColumn(column)

	if a.pendingIndex >= 0 {
		a.rowValues = append(a.rowValues, "NULL")
		a.refreshPending()
		return
	}
	a.transforms = append(a.transforms, AddColumn{TableName: tableName, Column: column})
}

// AddColumnWithValue appends a column whose value for existing rows is
// computed by the given SQL expression. Supplying a value always forces
// the rebuild path; an empty expression behaves like NULL. Panics if the
// column name is taken.
func (a *TableAlterer) AddColumnWithValue(name string, columnType ColumnType, value string, constraints ...string) {
	a.ensurePending()
	a.table = a.table.AddColumn(Column{Name: name, Type: columnType, Constraints: constraints})
	if value == "" {
		value = "NULL"
	}
	a.rowValues = append(a.rowValues, value)
	a.refreshPending()
}

// AlterColumn edits an existing column per the alteration. Always the
// rebuild path. Panics if the column does not exist or a rename collides.
func (a *TableAlterer) AlterColumn(name string, alteration ColumnAlteration) {
	i := a.table.indexOfColumn(name)
	if i < 0 {
		panicf("table %q has no column named %q", a.table.Name(), name)
	}
	a.ensurePending()

	column := a.table.columns[i]
	if alteration.RenameTo != "" {
		column.Name = alteration.RenameTo
	}
	if alteration.ChangeTypeTo != 0 {
		column.Type = alteration.ChangeTypeTo
	}
	if alteration.SetConstraints != nil {
		column.Constraints = slices.Clone(alteration.SetConstraints)
	}
	a.table = a.table.AlterColumn(name, column)

	if alteration.SetValue != "" {
		a.rowValues[i] = alteration.SetValue
	}
	a.refreshPending()
}

// DropColumn removes a column; any index referencing it is dropped with
// it. Always the rebuild path. Panics if the column does not exist.
func (a *TableAlterer) DropColumn(name string) {
	i := a.table.indexOfColumn(name)
	if i < 0 {
		panicf("table %q has no column named %q", a.table.Name(), name)
	}
	a.ensurePending()
	a.table = a.table.DropColumn(name)
	a.rowValues = slices.Delete(a.rowValues, i, i+1)
	a.refreshPending()
}

// AddConstraint appends an unnamed table-level constraint. Always the
// rebuild path.
func (a *TableAlterer) AddConstraint(clause string) {
	a.ensurePending()
	a.table = a.table.AddConstraint(TableConstraint{Clause: clause})
	a.refreshPending()
}

// AddNamedConstraint appends a named table-level constraint. Always the
// rebuild path. Panics if the name is taken.
func (a *TableAlterer) AddNamedConstraint(name, clause string) {
	a.ensurePending()
	a.table = a.table.AddConstraint(TableConstraint{Name: name, Clause: clause})
	a.refreshPending()
}

// DropConstraint removes the first unnamed constraint whose clause
// matches exactly. Always the rebuild path. Panics if none matches.
func (a *TableAlterer) DropConstraint(clause string) {
	a.ensurePending()
	a.table = a.table.DropConstraint(clause)
	a.refreshPending()
}

// DropConstraintNamed removes the named constraint. Always the rebuild
// path. Panics if no constraint has that name.
func (a *TableAlterer) DropConstraintNamed(name string) {
	a.ensurePending()
	a.table = a.table.DropConstraintNamed(name)
	a.refreshPending()
}

// DropAllConstraints removes every table-level constraint. Always the
// rebuild path.
func (a *TableAlterer) DropAllConstraints() {
	a.ensurePending()
	a.table = a.table.DropAllConstraints()
	a.refreshPending()
}
