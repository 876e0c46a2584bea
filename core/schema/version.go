package schema

import (
	"encoding/hex"
	"slices"

	"github.com/zeebo/blake3"
)

// Version is a numbered, immutable snapshot of the full schema: the
// resolved set of tables that exist after the version is applied, plus
// the ordered transforms that move a database from the previous version
// to this one. Versions are created by the builder DSL and never mutated
// afterward.
type Version struct {
	number     int
	tables     []Table
	transforms []Transform
}

// Number returns the version number. Numbers are strictly increasing
// across a Schema but need not be contiguous.
func (v *Version) Number() int { return v.number }

// Tables returns the full resolved table set, in declaration order.
// Tables untouched by this version are inherited from the prior version.
func (v *Version) Tables() []Table { return slices.Clone(v.tables) }

// Transforms returns the ordered operations that migrate a database from
// the prior version to this one.
func (v *Version) Transforms() []Transform { return slices.Clone(v.transforms) }

// Indexes returns every index defined across the version's tables, in
// table order.
func (v *Version) Indexes() []TableIndex {
	var indexes []TableIndex
	for _, t := range v.tables {
		indexes = append(indexes, t.indexes...)
	}
	return indexes
}

func (v *Version) indexOfTable(name string) int {
	return slices.IndexFunc(v.tables, func(t Table) bool { return t.name == name })
}

// TableNamed returns the table with the given name, if the version
// defines one.
func (v *Version) TableNamed(name string) (Table, bool) {
	if i := v.indexOfTable(name); i >= 0 {
		return v.tables[i], true
	}
	return Table{}, false
}

// ContainsTable reports whether the version defines a table with the
// given name.
func (v *Version) ContainsTable(name string) bool {
	return v.indexOfTable(name) >= 0
}

// Fingerprint returns a BLAKE3 digest of the version's resolved schema:
// every table's DDL and every index's DDL, in declaration order. A
// database migrated to this version through any path has a schema
// matching this fingerprint's inputs.
func (v *Version) Fingerprint() string {
	hasher := blake3.New()
	for _, t := range v.tables {
		hasher.WriteString(t.createSQL())
		hasher.WriteString("\x00")
		for _, ix := range t.indexes {
			hasher.WriteString(ix.createSQL())
			hasher.WriteString("\x00")
		}
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
