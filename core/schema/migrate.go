package schema

import (
	"context"
	"fmt"

	"github.com/nerdyc/Squeal-sub000/core/db"
	"github.com/nerdyc/Squeal-sub000/internal/logging"
	"github.com/nerdyc/Squeal-sub000/internal/sqlutil"
)

// MigrationOptions adjusts MigrateTo's handling of databases whose
// persisted version predates the schema's first defined version.
type MigrationOptions uint32

const (
	// ResetOldDatabaseVersions permits migrating a database whose persisted
	// version is lower than the schema's first defined version by dropping
	// every user table and replaying the schema from scratch. Without it,
	// such a database fails with UnknownVersionError. Versions above the
	// latest defined version always fail: a newer schema wrote them, and
	// destroying that data would be wrong.
	ResetOldDatabaseVersions MigrationOptions = 1 << iota
)

// Migrate brings the database to the schema's latest version, applying
// each intermediate version's transforms in order. It reports whether any
// work was done: a database already at the latest version returns
// (false, nil). The whole migration runs in one transaction; on error the
// database is untouched.
func (s *Schema) Migrate(ctx context.Context, d *db.Database) (bool, error) {
	latest := s.LatestVersion()
	if latest == nil {
		return false, ErrNoVersions
	}
	return s.MigrateTo(ctx, d, latest.Number(), 0)
}

// MigrateWithOptions is Migrate with options applied, for callers that
// need ResetOldDatabaseVersions when targeting the latest version.
func (s *Schema) MigrateWithOptions(ctx context.Context, d *db.Database, options MigrationOptions) (bool, error) {
	latest := s.LatestVersion()
	if latest == nil {
		return false, ErrNoVersions
	}
	return s.MigrateTo(ctx, d, latest.Number(), options)
}

// MigrateTo brings the database to the given version number. The target
// must be defined by the schema and must not precede the database's
// current version. All transforms across all intermediate versions run in
// a single immediate transaction, so a failure at any step leaves the
// database exactly as it was, persisted version included.
//
// Foreign-key enforcement is disabled for the duration and restored
// afterward. SQLite ignores the foreign_keys pragma inside an open
// transaction, so the flag is flipped outside the transaction on the
// database's dedicated connection.
func (s *Schema) MigrateTo(ctx context.Context, d *db.Database, toVersion int, options MigrationOptions) (didMigrate bool, err error) {
	if len(s.versions) == 0 {
		return false, ErrNoVersions
	}

	fkEnabled, err := d.ForeignKeysEnabled(ctx)
	if err != nil {
		return false, err
	}
	if fkEnabled {
		if err := d.SetForeignKeysEnabled(ctx, false); err != nil {
			return false, err
		}
		defer func() {
			restoreErr := d.SetForeignKeysEnabled(ctx, true)
			if err == nil {
				err = restoreErr
			}
		}()
	}

	err = d.Transaction(ctx, func(ctx context.Context) error {
		current, err := d.UserVersion(ctx)
		if err != nil {
			return err
		}

		fromIndex := -1
		reset := false
		if current != 0 {
			fromIndex = s.indexOfVersionNumber(current)
			if fromIndex < 0 {
				if options&ResetOldDatabaseVersions != 0 && current < s.versions[0].number {
					fromIndex = -1
					reset = true
				} else {
					return &UnknownVersionError{Version: current}
				}
			}
		}

		toIndex := s.indexOfVersionNumber(toVersion)
		if toIndex < 0 {
			return &UnknownVersionError{Version: toVersion}
		}
		if toIndex < fromIndex {
			return &UnreachableVersionError{Current: current, Target: toVersion}
		}
		if toIndex == fromIndex {
			return nil
		}

		if reset {
			logging.Info("resetting database predating first schema version",
				"schema", s.identifier, "persisted_version", current)
			if err := dropUserTables(ctx, d); err != nil {
				return err
			}
			if err := d.SetUserVersion(ctx, 0); err != nil {
				return err
			}
			current = 0
		}

		for i := fromIndex + 1; i <= toIndex; i++ {
			version := s.versions[i]
			logging.Migration(s.identifier, current, version.number,
				"transforms", len(version.transforms))
			for _, tf := range version.transforms {
				if err := applyTransform(ctx, d, tf); err != nil {
					return fmt.Errorf("schema: version %d: %w", version.number, err)
				}
			}
			if err := d.SetUserVersion(ctx, version.number); err != nil {
				return err
			}
			current = version.number
		}
		didMigrate = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return didMigrate, nil
}

// Reset drops every user table and sets the persisted version back to 0,
// leaving an empty database ready for a fresh Migrate.
func (s *Schema) Reset(ctx context.Context, d *db.Database) error {
	logging.Info("resetting database", "schema", s.identifier, "path", d.Path())
	return ResetDatabase(ctx, d)
}

// ResetDatabase drops every user table and sets the persisted version
// back to 0, independent of any Schema. Runs in one transaction with
// foreign-key enforcement suspended, like a migration.
func ResetDatabase(ctx context.Context, d *db.Database) (err error) {
	fkEnabled, err := d.ForeignKeysEnabled(ctx)
	if err != nil {
		return err
	}
	if fkEnabled {
		if err := d.SetForeignKeysEnabled(ctx, false); err != nil {
			return err
		}
		defer func() {
			restoreErr := d.SetForeignKeysEnabled(ctx, true)
			if err == nil {
				err = restoreErr
			}
		}()
	}

	return d.Transaction(ctx, func(ctx context.Context) error {
		if err := dropUserTables(ctx, d); err != nil {
			return err
		}
		return d.SetUserVersion(ctx, 0)
	})
}

// dropUserTables drops every table visible in sqlite_master. Internal
// sqlite_* tables are never listed, so they survive.
func dropUserTables(ctx context.Context, d *db.Database) error {
	names, err := d.TableNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := d.Exec(ctx, "DROP TABLE "+sqlutil.QuoteIdent(name)); err != nil {
			return fmt.Errorf("schema: failed to drop table %q: %w", name, err)
		}
	}
	return nil
}
