package schema

// TableBuilder accumulates the columns and constraints of a new table
// inside a CreateTable block. Indexes are not declared here; they are
// added afterward with VersionBuilder.CreateIndex.
type TableBuilder struct {
	name        string
	columns     []Column
	constraints []TableConstraint
}

// Column appends a column. Constraints are raw SQL clauses rendered after
// the type, in order.
func (tb *TableBuilder) Column(name string, columnType ColumnType, constraints ...string) {
	tb.columns = append(tb.columns, Column{
		Name:        name,
		Type:        columnType,
		Constraints: constraints,
	})
}

// PrimaryKey appends an integer column declared PRIMARY KEY, optionally
// AUTOINCREMENT. Sugar for the common rowid-alias pattern.
func (tb *TableBuilder) PrimaryKey(name string, autoincrement bool) {
	constraint := "PRIMARY KEY"
	if autoincrement {
		constraint += " AUTOINCREMENT"
	}
	tb.Column(name, Integer, constraint)
}

// Constraint appends an unnamed table-level constraint clause.
func (tb *TableBuilder) Constraint(clause string) {
	tb.constraints = append(tb.constraints, TableConstraint{Clause: clause})
}

// NamedConstraint appends a named table-level constraint clause. The name
// must be unique within the table.
func (tb *TableBuilder) NamedConstraint(name, clause string) {
	tb.constraints = append(tb.constraints, TableConstraint{Name: name, Clause: clause})
}

// build freezes the accumulated definition into an immutable Table with
// no indexes. NewTable performs the duplicate-name validation.
func (tb *TableBuilder) build() Table {
	return NewTable(tb.name, tb.columns, tb.constraints)
}
