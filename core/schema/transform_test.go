package schema

import (
	"strings"
	"testing"
	"time"
)

func TestTransformStrings(t *testing.T) {
	table := peopleTable()
	index := TableIndex{Name: "people_name", TableName: "people", Columns: []string{"name"}}

	tests := []struct {
		name      string
		transform Transform
		want      string
	}{
		{"create table", CreateTable{Table: table}, "create table people"},
		{"drop table", DropTable{TableName: "people"}, "drop table people"},
		{"rename table", RenameTable{OldName: "a", NewName: "b"}, "rename table a to b"},
		{"create index", CreateIndex{Index: index}, "create index people_name on people"},
		{"drop index", DropIndex{IndexName: "people_name"}, "drop index people_name"},
		{"rename index", RenameIndex{OldName: "old", Index: index}, "rename index old to people_name"},
		{"add column", AddColumn{TableName: "people", Column: Column{Name: "email", Type: Text}},
			"add column email to table people"},
		{"alter table", AlterTable{Table: table}, "alter table people"},
		{"execute", Execute{}, "execute block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.transform.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemporaryTableName(t *testing.T) {
	name := temporaryTableName("people")
	if !strings.HasPrefix(name, "people_rebuild_") {
		t.Errorf("temporary name %q lacks the rebuild prefix", name)
	}
	time.Sleep(time.Millisecond)
	if name == temporaryTableName("people") {
		// Identical names would corrupt a rebuild.
		t.Error("temporary names collided across calls")
	}
}

func TestColumnTypeString(t *testing.T) {
	tests := []struct {
		columnType ColumnType
		want       string
	}{
		{Text, "TEXT"},
		{Integer, "INTEGER"},
		{Real, "REAL"},
		{Blob, "BLOB"},
	}
	for _, tt := range tests {
		if got := tt.columnType.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", int(tt.columnType), got, tt.want)
		}
	}
}
