package schema

import "slices"

// Schema is an immutable, ordered collection of Versions describing every
// shape a database has ever had, built once at startup through the New
// builder DSL. A Schema is safe for concurrent use.
type Schema struct {
	identifier string
	versions   []*Version
}

// New builds a Schema by running define against a fresh Builder. The
// identifier names the schema in logs and tooling; it carries no runtime
// semantics. Definition mistakes (duplicate names, out-of-order versions,
// references to missing tables or columns) panic, since they are
// programming errors detectable the first time the process starts.
func New(identifier string, define func(b *Builder)) *Schema {
	builder := &Builder{}
	define(builder)
	return &Schema{
		identifier: identifier,
		versions:   builder.versions,
	}
}

// Identifier returns the name the schema was declared with.
func (s *Schema) Identifier() string { return s.identifier }

// Versions returns the declared versions in ascending number order.
func (s *Schema) Versions() []*Version { return slices.Clone(s.versions) }

// LatestVersion returns the highest-numbered version, or nil when the
// schema defines none.
func (s *Schema) LatestVersion() *Version {
	if len(s.versions) == 0 {
		return nil
	}
	return s.versions[len(s.versions)-1]
}

func (s *Schema) indexOfVersionNumber(number int) int {
	return slices.IndexFunc(s.versions, func(v *Version) bool { return v.number == number })
}

// VersionWithNumber returns the version with the given number, or nil if
// the schema does not define it.
func (s *Schema) VersionWithNumber(number int) *Version {
	if i := s.indexOfVersionNumber(number); i >= 0 {
		return s.versions[i]
	}
	return nil
}

// Fingerprint returns the latest version's schema fingerprint, or the
// empty string for a schema with no versions.
func (s *Schema) Fingerprint() string {
	latest := s.LatestVersion()
	if latest == nil {
		return ""
	}
	return latest.Fingerprint()
}
