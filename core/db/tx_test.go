package db

import (
	"context"
	"errors"
	"testing"
)

func TestTransactionCommit(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	err := d.Transaction(ctx, func(ctx context.Context) error {
		_, err := d.Exec(ctx, "INSERT INTO notes VALUES ('kept')")
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	count, err := d.CountFrom(ctx, "notes")
	if err != nil {
		t.Fatalf("CountFrom failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestTransactionRollback(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	boom := errors.New("boom")
	err := d.Transaction(ctx, func(ctx context.Context) error {
		if _, err := d.Exec(ctx, "INSERT INTO notes VALUES ('discarded')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction error = %v, want boom", err)
	}

	count, err := d.CountFrom(ctx, "notes")
	if err != nil {
		t.Fatalf("CountFrom failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d after rollback, want 0", count)
	}
}

func TestSavepointNestsInsideTransaction(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	boom := errors.New("boom")
	err := d.Transaction(ctx, func(ctx context.Context) error {
		if _, err := d.Exec(ctx, "INSERT INTO notes VALUES ('outer')"); err != nil {
			return err
		}
		// Failing savepoint rolls back only its own statements.
		spErr := d.Savepoint(ctx, func(ctx context.Context) error {
			if _, err := d.Exec(ctx, "INSERT INTO notes VALUES ('inner')"); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(spErr, boom) {
			t.Errorf("savepoint error = %v, want boom", spErr)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	rows, err := d.SelectAll(ctx, "SELECT body FROM notes")
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["body"] != "outer" {
		t.Errorf("rows = %v, want single 'outer' row", rows)
	}
}

func TestSavepointRelease(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	err := d.Savepoint(ctx, func(ctx context.Context) error {
		_, err := d.Exec(ctx, "INSERT INTO notes VALUES ('kept')")
		return err
	})
	if err != nil {
		t.Fatalf("savepoint failed: %v", err)
	}

	count, err := d.CountFrom(ctx, "notes")
	if err != nil {
		t.Fatalf("CountFrom failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
