package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nerdyc/Squeal-sub000/internal/logging"
	"github.com/nerdyc/Squeal-sub000/internal/sqlutil"
)

// quoteIdent escapes a SQL identifier for interpolation.
var quoteIdent = sqlutil.QuoteIdent

// Transaction runs fn inside a transaction on the pinned connection. The
// transaction is committed when fn returns nil and rolled back otherwise.
// BEGIN IMMEDIATE is used so the write lock is taken up front rather than
// on first write.
func (d *Database) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.conn == nil {
		return ErrClosed
	}
	if _, err := d.conn.ExecContext(ctx, "BEGIN IMMEDIATE TRANSACTION"); err != nil {
		return fmt.Errorf("db: failed to begin transaction: %w", err)
	}

	if err := fn(ctx); err != nil {
		if _, rollbackErr := d.conn.ExecContext(ctx, "ROLLBACK TRANSACTION"); rollbackErr != nil {
			logging.Warn("transaction rollback failed", "path", d.path, "error", rollbackErr)
		}
		return err
	}

	if _, err := d.conn.ExecContext(ctx, "COMMIT TRANSACTION"); err != nil {
		if _, rollbackErr := d.conn.ExecContext(ctx, "ROLLBACK TRANSACTION"); rollbackErr != nil {
			logging.Warn("transaction rollback failed", "path", d.path, "error", rollbackErr)
		}
		return fmt.Errorf("db: failed to commit transaction: %w", err)
	}
	return nil
}

// Savepoint runs fn inside a savepoint with a generated unique name.
// Savepoints nest: inside a transaction a failing savepoint rolls back
// only its own statements. The savepoint is released when fn returns nil
// and rolled back otherwise.
func (d *Database) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	if d.conn == nil {
		return ErrClosed
	}
	name := savepointName()
	if _, err := d.conn.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("db: failed to create savepoint: %w", err)
	}

	if err := fn(ctx); err != nil {
		if _, rollbackErr := d.conn.ExecContext(ctx, "ROLLBACK TRANSACTION TO SAVEPOINT "+name); rollbackErr != nil {
			logging.Warn("savepoint rollback failed", "path", d.path, "error", rollbackErr)
		}
		// Release after rollback so the savepoint does not linger on the stack.
		d.conn.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
		return err
	}

	if _, err := d.conn.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("db: failed to release savepoint: %w", err)
	}
	return nil
}

// savepointName generates a unique, identifier-safe savepoint name.
func savepointName() string {
	return quoteIdent("squeal_sp_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
}
