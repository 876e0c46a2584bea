package db

import (
	"context"
	"slices"
	"testing"
)

func TestTableNames(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	names, err := d.TableNames(ctx)
	if err != nil {
		t.Fatalf("TableNames failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("fresh database has tables: %v", names)
	}

	for _, stmt := range []string{
		"CREATE TABLE zebras (id INTEGER)",
		"CREATE TABLE apples (id INTEGER)",
	} {
		if _, err := d.Exec(ctx, stmt); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
	}

	names, err = d.TableNames(ctx)
	if err != nil {
		t.Fatalf("TableNames failed: %v", err)
	}
	want := []string{"apples", "zebras"}
	if !slices.Equal(names, want) {
		t.Errorf("TableNames = %v, want %v", names, want)
	}
}

func TestIndexNames(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE people (id INTEGER, name TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := d.Exec(ctx, "CREATE INDEX people_name ON people (name)"); err != nil {
		t.Fatalf("failed to create index: %v", err)
	}

	names, err := d.IndexNames(ctx)
	if err != nil {
		t.Fatalf("IndexNames failed: %v", err)
	}
	if !slices.Equal(names, []string{"people_name"}) {
		t.Errorf("IndexNames = %v, want [people_name]", names)
	}
}

func TestTableExists(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx, "CREATE TABLE present (id INTEGER)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	exists, err := d.TableExists(ctx, "present")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if !exists {
		t.Error("table 'present' should exist")
	}

	exists, err = d.TableExists(ctx, "absent")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if exists {
		t.Error("table 'absent' should not exist")
	}
}

func TestColumnNames(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	if _, err := d.Exec(ctx,
		"CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT NOT NULL, age REAL)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	names, err := d.ColumnNames(ctx, "people")
	if err != nil {
		t.Fatalf("ColumnNames failed: %v", err)
	}
	want := []string{"id", "name", "age"}
	if !slices.Equal(names, want) {
		t.Errorf("ColumnNames = %v, want %v", names, want)
	}

	if _, err := d.ColumnNames(ctx, "missing"); err == nil {
		t.Error("ColumnNames on missing table should fail")
	}
}

func TestSchemaFingerprint(t *testing.T) {
	ctx := context.Background()

	a := openTestDB(t)
	b := openTestDB(t)
	for _, d := range []*Database{a, b} {
		if _, err := d.Exec(ctx, "CREATE TABLE people (id INTEGER, name TEXT)"); err != nil {
			t.Fatalf("failed to create table: %v", err)
		}
		if _, err := d.Exec(ctx, "CREATE INDEX people_name ON people (name)"); err != nil {
			t.Fatalf("failed to create index: %v", err)
		}
	}

	fpA, err := a.SchemaFingerprint(ctx)
	if err != nil {
		t.Fatalf("SchemaFingerprint failed: %v", err)
	}
	fpB, err := b.SchemaFingerprint(ctx)
	if err != nil {
		t.Fatalf("SchemaFingerprint failed: %v", err)
	}
	if fpA != fpB {
		t.Errorf("identical schemas fingerprint differently: %s vs %s", fpA, fpB)
	}

	// Data does not affect the fingerprint.
	if _, err := a.Exec(ctx, "INSERT INTO people VALUES (1, 'x')"); err != nil {
		t.Fatalf("failed to insert row: %v", err)
	}
	fpA2, err := a.SchemaFingerprint(ctx)
	if err != nil {
		t.Fatalf("SchemaFingerprint failed: %v", err)
	}
	if fpA2 != fpA {
		t.Error("inserting data changed the fingerprint")
	}

	// Schema changes do.
	if _, err := b.Exec(ctx, "CREATE TABLE extra (id INTEGER)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	fpB2, err := b.SchemaFingerprint(ctx)
	if err != nil {
		t.Fatalf("SchemaFingerprint failed: %v", err)
	}
	if fpB2 == fpB {
		t.Error("adding a table did not change the fingerprint")
	}
}
