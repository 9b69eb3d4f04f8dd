package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/lightdance/showcompiler/internal/db"
)

const migrateUsage = "usage: showc migrate [--db path] up|down|status|version N|force N"

// runMigrate dispatches the migrate subcommand against the embedded schema.
func runMigrate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	cf := addConfigFlags(fs)
	fs.Parse(args)
	args = fs.Args()
	if len(args) < 1 {
		return fmt.Errorf(migrateUsage)
	}

	cfg, err := cf.load()
	if err != nil {
		return err
	}
	migrationsFS, err := db.MigrationsFS()
	if err != nil {
		return fmt.Errorf("failed to get migrations filesystem: %w", err)
	}

	// Migrations own the schema, so open without applying any.
	database, err := db.OpenDB(cfg.GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	versionArg := func() (int, error) {
		if len(args) < 2 {
			return 0, fmt.Errorf("usage: showc migrate %s <version_number>", args[0])
		}
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid version %q", args[1])
		}
		return v, nil
	}

	switch args[0] {
	case "up":
		if err := database.MigrateUp(migrationsFS); err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		fmt.Fprintln(out, "✓ All migrations applied successfully")
	case "down":
		if err := database.MigrateDown(migrationsFS); err != nil {
			return fmt.Errorf("migration down failed: %w", err)
		}
		fmt.Fprintln(out, "✓ Rolled back one migration")
	case "status":
		status, err := database.GetMigrationStatus(migrationsFS)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "current version: %d\nlatest version:  %d\ndirty:           %v\n",
			status.CurrentVersion, status.LatestVersion, status.Dirty)
		if status.CurrentVersion < status.LatestVersion {
			fmt.Fprintf(out, "%d migration(s) pending\n", status.LatestVersion-status.CurrentVersion)
		}
	case "version":
		v, err := versionArg()
		if err != nil {
			return err
		}
		if err := database.MigrateTo(migrationsFS, uint(v)); err != nil {
			return fmt.Errorf("migration to version %d failed: %w", v, err)
		}
		fmt.Fprintf(out, "✓ Migrated to version %d\n", v)
	case "force":
		v, err := versionArg()
		if err != nil {
			return err
		}
		if err := database.MigrateForce(migrationsFS, v); err != nil {
			return fmt.Errorf("force version %d failed: %w", v, err)
		}
		fmt.Fprintf(out, "✓ Forced version %d\n", v)
	default:
		return fmt.Errorf("unknown migrate action %q; %s", args[0], migrateUsage)
	}
	return nil
}
