package schema

import (
	"context"
	"slices"

	"github.com/nerdyc/Squeal-sub000/core/db"
)

// Builder collects the numbered versions of a Schema inside a New block.
type Builder struct {
	versions []*Version
}

// Version declares the next schema version and runs define to populate
// it. Version numbers must be positive and strictly increasing in
// declaration order; they need not be contiguous. The version builder
// starts from the prior version's resolved table set, or empty for the
// first version.
func (b *Builder) Version(number int, define func(v *VersionBuilder)) {
	if number <= 0 {
		panicf("version number %d must be positive", number)
	}
	var priorTables []Table
	if n := len(b.versions); n > 0 {
		prior := b.versions[n-1]
		if number <= prior.number {
			panicf("version %d must be declared after version %d in increasing order", number, prior.number)
		}
		priorTables = prior.tables
	}

	vb := newVersionBuilder(number, priorTables)
	define(vb)
	b.versions = append(b.versions, vb.build())
}

// VersionBuilder accumulates one Version's table set and transform list
// from a sequence of declarative calls. Each call appends one transform
// (or, for AlterTable blocks, a coalesced few) and updates the running
// table-set snapshot.
type VersionBuilder struct {
	number     int
	tables     []Table
	transforms []Transform
	// createdThisVersion guards against dropping a table that was never
	// persisted by an earlier version.
	createdThisVersion map[string]bool
}

func newVersionBuilder(number int, priorTables []Table) *VersionBuilder {
	return &VersionBuilder{
		number:             number,
		tables:             slices.Clone(priorTables),
		createdThisVersion: make(map[string]bool),
	}
}

// Number returns the version number being built.
func (vb *VersionBuilder) Number() int { return vb.number }

// Tables returns the table set as resolved so far.
func (vb *VersionBuilder) Tables() []Table { return slices.Clone(vb.tables) }

func (vb *VersionBuilder) indexOfTable(name string) int {
	return slices.IndexFunc(vb.tables, func(t Table) bool { return t.name == name })
}

// TableNamed returns the table with the given name as resolved so far.
func (vb *VersionBuilder) TableNamed(name string) (Table, bool) {
	if i := vb.indexOfTable(name); i >= 0 {
		return vb.tables[i], true
	}
	return Table{}, false
}

// ContainsTable reports whether the table set currently has a table with
// the given name.
func (vb *VersionBuilder) ContainsTable(name string) bool {
	return vb.indexOfTable(name) >= 0
}

// indexOwner locates the table owning the named index. Index names are
// schema-global, so at most one table can own it.
func (vb *VersionBuilder) indexOwner(name string) int {
	return slices.IndexFunc(vb.tables, func(t Table) bool { return t.ContainsIndex(name) })
}

// CreateTable declares a new table, populated by define. Panics if the
// name is taken.
func (vb *VersionBuilder) CreateTable(name string, define func(t *TableBuilder)) {
	if vb.ContainsTable(name) {
		panicf("version %d already contains a table named %q", vb.number, name)
	}
	tb := &TableBuilder{name: name}
	define(tb)
	table := tb.build()

	vb.tables = append(vb.tables, table)
	vb.createdThisVersion[name] = true
	vb.transforms = append(vb.transforms, CreateTable{Table: table})
}

// AlterTable edits an existing table through a TableAlterer block,
// emitting the coalesced transforms it produces. Panics if the table does
// not exist.
func (vb *VersionBuilder) AlterTable(name string, define func(a *TableAlterer)) {
	i := vb.indexOfTable(name)
	if i < 0 {
		panicf("version %d has no table named %q", vb.number, name)
	}
	alterer := newTableAlterer(vb.tables[i])
	define(alterer)

	vb.tables[i] = alterer.table
	vb.transforms = append(vb.transforms, alterer.transforms...)
}

// DropTable removes a table. Dropping a table created earlier in the same
// version is a definition error: that table was never persisted, so the
// drop could only be a builder bug. Panics on unknown or same-version
// tables.
func (vb *VersionBuilder) DropTable(name string) {
	i := vb.indexOfTable(name)
	if i < 0 {
		panicf("version %d has no table named %q", vb.number, name)
	}
	if vb.createdThisVersion[name] {
		panicf("version %d cannot drop table %q created in the same version", vb.number, name)
	}
	vb.tables = slices.Delete(vb.tables, i, i+1)
	vb.transforms = append(vb.transforms, DropTable{TableName: name})
}

// RenameTable renames a table; index definitions on it follow the new
// name. Panics if the old name does not exist or the new name is taken.
func (vb *VersionBuilder) RenameTable(oldName, newName string) {
	i := vb.indexOfTable(oldName)
	if i < 0 {
		panicf("version %d has no table named %q", vb.number, oldName)
	}
	if vb.ContainsTable(newName) {
		panicf("version %d already contains a table named %q", vb.number, newName)
	}
	vb.tables[i] = vb.tables[i].Renamed(newName)
	if vb.createdThisVersion[oldName] {
		delete(vb.createdThisVersion, oldName)
		vb.createdThisVersion[newName] = true
	}
	vb.transforms = append(vb.transforms, RenameTable{OldName: oldName, NewName: newName})
}

// IndexOption customizes an index declared with CreateIndex.
type IndexOption func(ix *TableIndex)

// Unique makes the index a UNIQUE index.
func Unique() IndexOption {
	return func(ix *TableIndex) { ix.Unique = true }
}

// Where sets a partial-index predicate, rendered verbatim.
func Where(expr string) IndexOption {
	return func(ix *TableIndex) { ix.Where = expr }
}

// CreateIndex declares an index on an existing table. The index name must
// be unique across the whole schema and every column must exist in the
// table. Panics on violations.
func (vb *VersionBuilder) CreateIndex(name, tableName string, columns []string, opts ...IndexOption) {
	i := vb.indexOfTable(tableName)
	if i < 0 {
		panicf("version %d has no table named %q", vb.number, tableName)
	}
	if vb.indexOwner(name) >= 0 {
		panicf("version %d already contains an index named %q", vb.number, name)
	}

	ix := TableIndex{Name: name, TableName: tableName, Columns: slices.Clone(columns)}
	for _, opt := range opts {
		opt(&ix)
	}
	vb.tables[i] = vb.tables[i].AddIndex(ix)
	vb.transforms = append(vb.transforms, CreateIndex{Index: ix})
}

// DropIndex removes an index, whichever table owns it. Panics if no table
// has an index with that name.
func (vb *VersionBuilder) DropIndex(name string) {
	i := vb.indexOwner(name)
	if i < 0 {
		panicf("version %d has no index named %q", vb.number, name)
	}
	vb.tables[i] = vb.tables[i].DropIndex(name)
	vb.transforms = append(vb.transforms, DropIndex{IndexName: name})
}

// RenameIndex renames an index. Panics if the old name does not exist or
// the new name is taken.
func (vb *VersionBuilder) RenameIndex(oldName, newName string) {
	i := vb.indexOwner(oldName)
	if i < 0 {
		panicf("version %d has no index named %q", vb.number, oldName)
	}
	if vb.indexOwner(newName) >= 0 {
		panicf("version %d already contains an index named %q", vb.number, newName)
	}
	vb.tables[i] = vb.tables[i].RenameIndex(oldName, newName)
	renamed, _ := vb.tables[i].IndexNamed(newName)
	vb.transforms = append(vb.transforms, RenameIndex{OldName: oldName, Index: renamed})
}

// Execute appends an opaque block run directly against the database when
// the version is applied, for data-only migration steps.
func (vb *VersionBuilder) Execute(block func(ctx context.Context, d *db.Database) error) {
	vb.transforms = append(vb.transforms, Execute{Block: block})
}

// build freezes the builder's state into an immutable Version.
func (vb *VersionBuilder) build() *Version {
	return &Version{
		number:     vb.number,
		tables:     vb.tables,
		transforms: vb.transforms,
	}
}
