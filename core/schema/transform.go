package schema

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nerdyc/Squeal-sub000/core/db"
	"github.com/nerdyc/Squeal-sub000/internal/logging"
	"github.com/nerdyc/Squeal-sub000/internal/sqlutil"
)

// Transform is one atomic schema- or data-changing operation applied
// against a live database during migration. The variant set is closed:
// CreateTable, DropTable, RenameTable, CreateIndex, DropIndex,
// RenameIndex, AddColumn, AlterTable, and Execute. Each variant carries
// only the data it needs; applyTransform dispatches exhaustively over the
// set, which keeps transform lists inspectable without dispatch machinery.
type Transform interface {
	isTransform()
	// String describes the operation for logs and error messages.
	String() string
}

// CreateTable creates a new table from its resolved description. Indexes
// declared later in the same version arrive as separate CreateIndex
// transforms.
type CreateTable struct {
	Table Table
}

func (CreateTable) isTransform() {}

func (t CreateTable) String() string { return "create table " + t.Table.Name() }

// DropTable drops a table.
type DropTable struct {
	TableName string
}

func (DropTable) isTransform() {}

func (t DropTable) String() string { return "drop table " + t.TableName }

// RenameTable renames a table in place.
type RenameTable struct {
	OldName string
	NewName string
}

func (RenameTable) isTransform() {}

func (t RenameTable) String() string { return "rename table " + t.OldName + " to " + t.NewName }

// CreateIndex creates an index.
type CreateIndex struct {
	Index TableIndex
}

func (CreateIndex) isTransform() {}

func (t CreateIndex) String() string {
	return "create index " + t.Index.Name + " on " + t.Index.TableName
}

// DropIndex drops an index.
type DropIndex struct {
	IndexName string
}

func (DropIndex) isTransform() {}

func (t DropIndex) String() string { return "drop index " + t.IndexName }

// RenameIndex renames an index. SQLite has no native index rename, so the
// transform drops the old index and re-creates it from the carried
// definition under the new name.
type RenameIndex struct {
	OldName string
	// Index is the full definition under the new name.
	Index TableIndex
}

func (RenameIndex) isTransform() {}

func (t RenameIndex) String() string { return "rename index " + t.OldName + " to " + t.Index.Name }

// AddColumn appends a column to an existing table via ALTER TABLE ... ADD
// COLUMN. This is the fast path: no table rebuild and no data rewrite.
type AddColumn struct {
	TableName string
	Column    Column
}

func (AddColumn) isTransform() {}

func (t AddColumn) String() string {
	return "add column " + t.Column.Name + " to table " + t.TableName
}

// AlterTable rebuilds a table into a new shape, carrying the data across.
// SQLite cannot rename, retype, or drop columns, nor remove table
// constraints, in place; the rebuild is the standard workaround: create a
// temporary table in the target shape, copy every row through one INSERT
// ... SELECT, drop the original, rename the temporary into place, and
// re-create the indexes.
//
// RowValues holds, for each column of the target Table in order, the SQL
// expression that computes that column's value from a row of the
// pre-rebuild table: the old column reference for carried-forward values,
// NULL for added columns with no initial expression, or an arbitrary
// caller-supplied expression.
type AlterTable struct {
	Table     Table
	RowValues []string
}

func (AlterTable) isTransform() {}

func (t AlterTable) String() string { return "alter table " + t.Table.Name() }

// Execute runs an opaque block directly against the database, for
// data-only migration steps that the declarative operations cannot
// express.
type Execute struct {
	Block func(ctx context.Context, d *db.Database) error
}

func (Execute) isTransform() {}

func (t Execute) String() string { return "execute block" }

// applyTransform applies one transform to a live database. It is only
// ever called inside the migration transaction.
func applyTransform(ctx context.Context, d *db.Database, tf Transform) error {
	logging.Debug("applying transform", "transform", tf.String())

	switch tf := tf.(type) {
	case CreateTable:
		return execTransform(ctx, d, tf, tf.Table.createSQL())

	case DropTable:
		return execTransform(ctx, d, tf, "DROP TABLE "+quoteIdent(tf.TableName))

	case RenameTable:
		return execTransform(ctx, d, tf,
			"ALTER TABLE "+quoteIdent(tf.OldName)+" RENAME TO "+quoteIdent(tf.NewName))

	case CreateIndex:
		return execTransform(ctx, d, tf, tf.Index.createSQL())

	case DropIndex:
		return execTransform(ctx, d, tf, "DROP INDEX "+quoteIdent(tf.IndexName))

	case RenameIndex:
		if err := execTransform(ctx, d, tf, "DROP INDEX "+quoteIdent(tf.OldName)); err != nil {
			return err
		}
		return execTransform(ctx, d, tf, tf.Index.createSQL())

	case AddColumn:
		return execTransform(ctx, d, tf,
			"ALTER TABLE "+quoteIdent(tf.TableName)+" ADD COLUMN "+tf.Column.definition())

	case AlterTable:
		return applyAlterTable(ctx, d, tf)

	case Execute:
		if err := tf.Block(ctx, d); err != nil {
			return fmt.Errorf("%s: %w", tf.String(), err)
		}
		return nil

	default:
		return fmt.Errorf("schema: unknown transform %T", tf)
	}
}

func execTransform(ctx context.Context, d *db.Database, tf Transform, sql string) error {
	if _, err := d.Exec(ctx, sql); err != nil {
		return fmt.Errorf("%s: %w", tf.String(), err)
	}
	return nil
}

// applyAlterTable performs the copy-rebuild-swap sequence for one
// AlterTable transform, then verifies referential integrity. The caller's
// transaction protects the intermediate states; foreign-key enforcement is
// expected to be disabled for the duration, since the sequence is
// intentionally inconsistent between the DROP and the RENAME.
func applyAlterTable(ctx context.Context, d *db.Database, tf AlterTable) error {
	target := tf.Table
	tempName := temporaryTableName(target.Name())

	// Create the replacement table in the target shape.
	if err := execTransform(ctx, d, tf, target.createSQLNamed(tempName)); err != nil {
		return err
	}

	// Copy every row across in a single statement, mapping each target
	// column through its value expression. Dropped columns simply have no
	// expression; renames and retypes reference the pre-rebuild column.
	copySQL := "INSERT INTO " + quoteIdent(tempName) +
		" (" + sqlutil.JoinIdents(target.ColumnNames()) + ")" +
		" SELECT " + strings.Join(tf.RowValues, ", ") +
		" FROM " + quoteIdent(target.Name())
	if err := execTransform(ctx, d, tf, copySQL); err != nil {
		return err
	}

	if err := execTransform(ctx, d, tf, "DROP TABLE "+quoteIdent(target.Name())); err != nil {
		return err
	}
	if err := execTransform(ctx, d, tf,
		"ALTER TABLE "+quoteIdent(tempName)+" RENAME TO "+quoteIdent(target.Name())); err != nil {
		return err
	}

	// Indexes were dropped with the original table; re-create the target set.
	for _, ix := range target.Indexes() {
		if err := execTransform(ctx, d, tf, ix.createSQL()); err != nil {
			return err
		}
	}

	// A rebuild can silently orphan rows that referenced the old table, or
	// rows of the rebuilt table whose references no longer hold. Surface
	// that instead of committing a referentially-inconsistent database.
	violations, err := d.ForeignKeyCheck(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", tf.String(), err)
	}
	if len(violations) > 0 {
		return &ForeignKeyViolationError{TableName: target.Name(), Violations: violations}
	}
	return nil
}

// temporaryTableName derives a rebuild scratch-table name that cannot
// collide with user tables, from the target name plus a high-resolution
// timestamp.
func temporaryTableName(base string) string {
	return fmt.Sprintf("%s_rebuild_%x", base, time.Now().UnixNano())
}
