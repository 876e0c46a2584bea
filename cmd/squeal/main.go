// Command squeal inspects and maintains SQLite databases managed by the
// squeal migration library: version status, table listings, foreign key
// checks, resets, and compressed backups.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/ulikunitz/xz"

	"github.com/nerdyc/Squeal-sub000/core/db"
	"github.com/nerdyc/Squeal-sub000/core/schema"
	"github.com/nerdyc/Squeal-sub000/core/sqlite"
	"github.com/nerdyc/Squeal-sub000/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for squeal.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" enum:"debug,info,warn,error" default:"warn" env:"SQUEAL_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" enum:"text,json" default:"text" env:"SQUEAL_LOG_FORMAT"`

	Status  StatusCmd  `cmd:"" help:"Show version, foreign key state, and schema fingerprint"`
	Tables  TablesCmd  `cmd:"" help:"List tables with their columns and indexes"`
	FkCheck FkCheckCmd `cmd:"" name:"fk-check" help:"Check every foreign key in the database"`
	Reset   ResetCmd   `cmd:"" help:"Drop all user tables and reset the version to 0"`
	Backup  BackupCmd  `cmd:"" help:"Write an xz-compressed backup of the database"`
	Version VersionCmd `cmd:"" help:"Print version and driver information"`
}

// StatusCmd shows the database's persisted version and schema summary.
type StatusCmd struct {
	Path string `arg:"" help:"Path to SQLite database" type:"existingfile"`
}

func (c *StatusCmd) Run() error {
	ctx := context.Background()
	d, err := db.Open(c.Path)
	if err != nil {
		return err
	}
	defer d.Close()

	userVersion, err := d.UserVersion(ctx)
	if err != nil {
		return err
	}
	fkEnabled, err := d.ForeignKeysEnabled(ctx)
	if err != nil {
		return err
	}
	tables, err := d.TableNames(ctx)
	if err != nil {
		return err
	}
	indexes, err := d.IndexNames(ctx)
	if err != nil {
		return err
	}
	fingerprint, err := d.SchemaFingerprint(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", c.Path)
	fmt.Printf("  Version: %d\n", userVersion)
	fmt.Printf("  Foreign keys: %v\n", fkEnabled)
	fmt.Printf("  Tables: %d\n", len(tables))
	fmt.Printf("  Indexes: %d\n", len(indexes))
	fmt.Printf("  Fingerprint: %s\n", fingerprint)
	return nil
}

// TablesCmd lists tables with their columns and indexes.
type TablesCmd struct {
	Path  string `arg:"" help:"Path to SQLite database" type:"existingfile"`
	Count bool   `help:"Include row counts"`
}

func (c *TablesCmd) Run() error {
	ctx := context.Background()
	d, err := db.Open(c.Path)
	if err != nil {
		return err
	}
	defer d.Close()

	tables, err := d.TableNames(ctx)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		fmt.Println("No tables.")
		return nil
	}

	for _, table := range tables {
		if c.Count {
			count, err := d.CountFrom(ctx, table)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d rows)\n", table, count)
		} else {
			fmt.Printf("%s\n", table)
		}

		columns, err := d.ColumnNames(ctx, table)
		if err != nil {
			return err
		}
		for _, column := range columns {
			fmt.Printf("  %s\n", column)
		}
	}

	indexes, err := d.IndexNames(ctx)
	if err != nil {
		return err
	}
	if len(indexes) > 0 {
		fmt.Println("\nIndexes:")
		for _, index := range indexes {
			fmt.Printf("  %s\n", index)
		}
	}
	return nil
}

// FkCheckCmd runs PRAGMA foreign_key_check over the whole database.
type FkCheckCmd struct {
	Path string `arg:"" help:"Path to SQLite database" type:"existingfile"`
}

func (c *FkCheckCmd) Run() error {
	ctx := context.Background()
	d, err := db.Open(c.Path)
	if err != nil {
		return err
	}
	defer d.Close()

	violations, err := d.ForeignKeyCheck(ctx)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		fmt.Println("No foreign key violations.")
		return nil
	}

	for _, v := range violations {
		fmt.Printf("  [FAIL] %s\n", v)
	}
	return fmt.Errorf("%d foreign key violation(s)", len(violations))
}

// ResetCmd drops every user table and resets the persisted version.
type ResetCmd struct {
	Path  string `arg:"" help:"Path to SQLite database" type:"existingfile"`
	Force bool   `help:"Skip the confirmation prompt"`
}

func (c *ResetCmd) Run() error {
	ctx := context.Background()

	if !c.Force {
		fmt.Printf("This drops every table in %s. Continue? [y/N] ", c.Path)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	d, err := db.Open(c.Path)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := schema.ResetDatabase(ctx, d); err != nil {
		return err
	}
	fmt.Printf("Reset: %s\n", c.Path)
	return nil
}

// BackupCmd writes a consistent, xz-compressed copy of the database.
type BackupCmd struct {
	Path string `arg:"" help:"Path to SQLite database" type:"existingfile"`
	Out  string `required:"" help:"Output path for the .xz backup" type:"path"`
}

func (c *BackupCmd) Run() error {
	ctx := context.Background()
	d, err := db.Open(c.Path)
	if err != nil {
		return err
	}
	defer d.Close()

	// VACUUM INTO produces a consistent snapshot even while other
	// connections are writing.
	tempDir, err := os.MkdirTemp("", "squeal-backup-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	snapshot := filepath.Join(tempDir, "snapshot.sqlite")
	if _, err := d.Exec(ctx, "VACUUM INTO ?", snapshot); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}

	if err := compressFile(snapshot, c.Out); err != nil {
		return err
	}

	info, err := os.Stat(c.Out)
	if err != nil {
		return err
	}
	fmt.Printf("Backup written: %s (%d bytes)\n", c.Out, info.Size())
	return nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer out.Close()

	w, err := xz.NewWriter(out)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	return out.Close()
}

// VersionCmd prints version and driver information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Printf("squeal version %s\n", version)
	fmt.Printf("  Driver: %s (%s)\n", info.DriverName, info.DriverType)
	fmt.Printf("  Package: %s\n", info.Package)
	return nil
}

func initLogging() {
	level := logging.LevelWarn
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "info":
		level = logging.LevelInfo
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("squeal"),
		kong.Description("SQLite schema migration toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
