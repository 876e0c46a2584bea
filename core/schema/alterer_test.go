package schema

import (
	"slices"
	"testing"
)

// alterPeople builds a one-version baseline schema and applies the edits
// in a second version, returning the second version's transforms.
func alterPeople(t *testing.T, edits func(a *TableAlterer)) []Transform {
	t.Helper()
	s := New("test", func(b *Builder) {
		b.Version(1, func(v *VersionBuilder) {
			v.CreateTable("people", func(tb *TableBuilder) {
				tb.PrimaryKey("id", false)
				tb.Column("name", Text, "NOT NULL")
			})
		})
		b.Version(2, func(v *VersionBuilder) {
			v.AlterTable("people", edits)
		})
	})
	return s.VersionWithNumber(2).Transforms()
}

func TestBareAddColumnIsFastPath(t *testing.T) {
	transforms := alterPeople(t, func(a *TableAlterer) {
		a.AddColumn("email", Text)
	})

	if len(transforms) != 1 {
		t.Fatalf("got %d transforms, want 1", len(transforms))
	}
	add, ok := transforms[0].(AddColumn)
	if !ok {
		t.Fatalf("transform = %T, want AddColumn", transforms[0])
	}
	if add.TableName != "people" || add.Column.Name != "email" || add.Column.Type != Text {
		t.Errorf("AddColumn = %+v", add)
	}
}

func TestAddColumnWithValueForcesRebuild(t *testing.T) {
	transforms := alterPeople(t, func(a *TableAlterer) {
		a.AddColumnWithValue("email", Text, "''", "NOT NULL")
	})

	if len(transforms) != 1 {
		t.Fatalf("got %d transforms, want 1", len(transforms))
	}
	alter, ok := transforms[0].(AlterTable)
	if !ok {
		t.Fatalf("transform = %T, want AlterTable", transforms[0])
	}
	want := []string{`"id"`, `"name"`, "''"}
	if !slices.Equal(alter.RowValues, want) {
		t.Errorf("RowValues = %v, want %v", alter.RowValues, want)
	}
	if !alter.Table.ContainsColumn("email") {
		t.Error("target shape should contain the new column")
	}
}

func TestConsecutiveRebuildEditsCoalesce(t *testing.T) {
	transforms := alterPeople(t, func(a *TableAlterer) {
		a.AlterColumn("name", ColumnAlteration{RenameTo: "full_name"})
		a.AddColumnWithValue("email", Text, "''")
		a.AddConstraint("CHECK (email <> 'invalid')")
	})

	if len(transforms) != 1 {
		t.Fatalf("got %d transforms, want 1 coalesced rebuild", len(transforms))
	}
	alter, ok := transforms[0].(AlterTable)
	if !ok {
		t.Fatalf("transform = %T, want AlterTable", transforms[0])
	}

	// Value expressions reference pre-rebuild names even after the rename.
	want := []string{`"id"`, `"name"`, "''"}
	if !slices.Equal(alter.RowValues, want) {
		t.Errorf("RowValues = %v, want %v", alter.RowValues, want)
	}
	if !alter.Table.ContainsColumn("full_name") || alter.Table.ContainsColumn("name") {
		t.Errorf("target columns = %v", alter.Table.ColumnNames())
	}
	if len(alter.Table.Constraints()) != 1 {
		t.Errorf("target constraints = %v", alter.Table.Constraints())
	}
}

func TestFastAddThenRebuildLeavesAddStandalone(t *testing.T) {
	transforms := alterPeople(t, func(a *TableAlterer) {
		a.AddColumn("email", Text)
		a.DropColumn("name")
	})

	if len(transforms) != 2 {
		t.Fatalf("got %d transforms, want 2", len(transforms))
	}
	if _, ok := transforms[0].(AddColumn); !ok {
		t.Errorf("transforms[0] = %T, want AddColumn", transforms[0])
	}
	alter, ok := transforms[1].(AlterTable)
	if !ok {
		t.Fatalf("transforms[1] = %T, want AlterTable", transforms[1])
	}

	// The rebuild baselines from the post-add shape, then drops name.
	wantColumns := []string{"id", "email"}
	if !slices.Equal(alter.Table.ColumnNames(), wantColumns) {
		t.Errorf("target columns = %v, want %v", alter.Table.ColumnNames(), wantColumns)
	}
	wantValues := []string{`"id"`, `"email"`}
	if !slices.Equal(alter.RowValues, wantValues) {
		t.Errorf("RowValues = %v, want %v", alter.RowValues, wantValues)
	}
}

func TestAddColumnDuringRebuildJoinsIt(t *testing.T) {
	transforms := alterPeople(t, func(a *TableAlterer) {
		a.DropColumn("name")
		a.AddColumn("email", Text)
	})

	if len(transforms) != 1 {
		t.Fatalf("got %d transforms, want 1", len(transforms))
	}
	alter := transforms[0].(AlterTable)
	wantValues := []string{`"id"`, "NULL"}
	if !slices.Equal(alter.RowValues, wantValues) {
		t.Errorf("RowValues = %v, want %v", alter.RowValues, wantValues)
	}
}

func TestAlterColumnSetValueAndRetype(t *testing.T) {
	transforms := alterPeople(t, func(a *TableAlterer) {
		a.AlterColumn("name", ColumnAlteration{
			ChangeTypeTo: Blob,
			SetValue:     "CAST(name AS BLOB)",
		})
	})

	alter := transforms[0].(AlterTable)
	column, _ := alter.Table.ColumnNamed("name")
	if column.Type != Blob {
		t.Errorf("column type = %v, want Blob", column.Type)
	}
	if alter.RowValues[1] != "CAST(name AS BLOB)" {
		t.Errorf("RowValues[1] = %q", alter.RowValues[1])
	}
}

func TestAlterColumnSetConstraints(t *testing.T) {
	transforms := alterPeople(t, func(a *TableAlterer) {
		// Empty non-nil slice clears the constraints.
		a.AlterColumn("name", ColumnAlteration{SetConstraints: []string{}})
	})

	alter := transforms[0].(AlterTable)
	column, _ := alter.Table.ColumnNamed("name")
	if len(column.Constraints) != 0 {
		t.Errorf("constraints = %v, want none", column.Constraints)
	}
}

func TestAlterUnknownColumnPanics(t *testing.T) {
	defer expectPanic(t, "altering unknown column")
	alterPeople(t, func(a *TableAlterer) {
		a.AlterColumn("ghost", ColumnAlteration{RenameTo: "x"})
	})
}

func TestDropConstraintEdits(t *testing.T) {
	s := New("test", func(b *Builder) {
		b.Version(1, func(v *VersionBuilder) {
			v.CreateTable("t", func(tb *TableBuilder) {
				tb.Column("a", Text)
				tb.Constraint("UNIQUE (a)")
				tb.NamedConstraint("ck", "CHECK (a <> '')")
			})
		})
		b.Version(2, func(v *VersionBuilder) {
			v.AlterTable("t", func(a *TableAlterer) {
				a.DropConstraint("UNIQUE (a)")
				a.DropConstraintNamed("ck")
			})
		})
	})

	transforms := s.VersionWithNumber(2).Transforms()
	if len(transforms) != 1 {
		t.Fatalf("got %d transforms, want 1", len(transforms))
	}
	alter := transforms[0].(AlterTable)
	if n := len(alter.Table.Constraints()); n != 0 {
		t.Errorf("target has %d constraints, want 0", n)
	}
}
