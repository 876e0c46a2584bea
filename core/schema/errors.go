package schema

import (
	"errors"
	"fmt"

	"github.com/nerdyc/Squeal-sub000/core/db"
)

// Sentinel errors for migration failures. The typed errors below unwrap
// to these, so callers can classify with errors.Is without holding the
// concrete type.
var (
	// ErrUnknownVersion indicates a version number with no corresponding
	// Version in the schema.
	ErrUnknownVersion = errors.New("unknown database version")
	// ErrUnreachableVersion indicates a migration target behind the
	// database's current version.
	ErrUnreachableVersion = errors.New("unreachable version")
	// ErrForeignKeyViolations indicates a table rebuild left the database
	// referentially inconsistent.
	ErrForeignKeyViolations = errors.New("foreign key violations")
	// ErrNoVersions indicates a migration was attempted against a schema
	// that defines no versions.
	ErrNoVersions = errors.New("schema defines no versions")
)

// UnknownVersionError is returned when the database's persisted version
// number, or an explicitly requested target version, has no corresponding
// Version in the schema and no reset policy applies.
type UnknownVersionError struct {
	// Version is the unmatched version number.
	Version int
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("schema: version %d is not defined by this schema", e.Version)
}

func (e *UnknownVersionError) Unwrap() error { return ErrUnknownVersion }

// UnreachableVersionError is returned when the requested target version
// precedes the database's current version; migrating backward is
// unsupported.
type UnreachableVersionError struct {
	// Current is the database's persisted version number.
	Current int
	// Target is the requested version number.
	Target int
}

func (e *UnreachableVersionError) Error() string {
	return fmt.Sprintf("schema: cannot migrate from version %d back to version %d", e.Current, e.Target)
}

func (e *UnreachableVersionError) Unwrap() error { return ErrUnreachableVersion }

// ForeignKeyViolationError is returned when the foreign-key check after a
// table rebuild reports violating rows. The whole migration is rolled
// back; the violations describe what would have been broken.
type ForeignKeyViolationError struct {
	// TableName is the table whose rebuild triggered the check.
	TableName string
	// Violations are the rows PRAGMA foreign_key_check reported, across
	// the whole database.
	Violations []db.ForeignKeyViolation
}

func (e *ForeignKeyViolationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("schema: rebuild of table %q broke a foreign key: %s",
			e.TableName, e.Violations[0])
	}
	return fmt.Sprintf("schema: rebuild of table %q broke %d foreign keys (first: %s)",
		e.TableName, len(e.Violations), e.Violations[0])
}

func (e *ForeignKeyViolationError) Unwrap() error { return ErrForeignKeyViolations }
