package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pthm/typedsql"
	"github.com/pthm/typedsql/internal/cli"
	"github.com/pthm/typedsql/pkg/migrator"
)

var (
	migrateDB      string
	migrateSchema  string
	migrateDryRun  bool
	migrateForce   bool
	migrateConfirm bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema to database",
	Long:  `Create missing tables and add missing columns. Existing tables and columns are never dropped or altered.`,
	Example: `  # Apply schema to database
  typedsql migrate --db postgres://localhost/mydb

  # Preview migration without applying
  typedsql migrate --db postgres://localhost/mydb --dry-run

  # Review the planned statements before applying
  typedsql migrate --confirm

  # Force re-apply even if schema unchanged
  typedsql migrate --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(migrateSchema, cfg.Migrate.Schema, cfg.Schema)
		dryRun := resolveBool(migrateDryRun, cfg.Migrate.DryRun)
		force := resolveBool(migrateForce, cfg.Migrate.Force)

		dsn, err := resolveDSN(migrateDB)
		if err != nil {
			return err
		}

		return runMigrate(cmd, dsn, schemaPath, dryRun, force)
	},
}

func init() {
	f := migrateCmd.Flags()
	f.StringVar(&migrateDB, "db", "", "database URL")
	f.StringVar(&migrateSchema, "schema", "", "path to schema file")
	f.BoolVar(&migrateDryRun, "dry-run", false, "output migration SQL without applying")
	f.BoolVar(&migrateForce, "force", false, "force migration even if schema unchanged")
	f.BoolVar(&migrateConfirm, "confirm", false, "show planned statements and ask before applying")
}

func runMigrate(cmd *cobra.Command, dsn, schemaPath string, dryRun, force bool) error {
	tables, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}

	db, err := openDB(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	m := migrator.NewMigrator(db, migrator.WithLogger(logger))

	opts := migrator.MigrateOptions{Force: force}
	if dryRun {
		opts.DryRun = out
		if !quiet {
			fmt.Fprintln(os.Stderr, "-- Dry-run mode: SQL will be output but not applied")
			fmt.Fprintln(os.Stderr, "")
		}
	} else if migrateConfirm {
		ok, err := confirmPlan(ctx, cmd, m, tables)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Migration cancelled.")
			return nil
		}
	}

	skipped, err := m.Migrate(ctx, tables, opts)
	if err != nil {
		return cli.GeneralError("migration failed", err)
	}

	if dryRun || quiet {
		return nil
	}
	if skipped {
		_, _ = fmt.Fprintln(out, "Schema unchanged, migration skipped.")
		_, _ = fmt.Fprintln(out, "Use --force to re-apply.")
	} else {
		_, _ = fmt.Fprintf(out, "Schema applied successfully (%d tables).\n", len(tables))
	}
	return nil
}

// confirmPlan prints the planned statements and asks whether to apply them.
// An empty plan needs no confirmation.
func confirmPlan(ctx context.Context, cmd *cobra.Command, m *migrator.Migrator, tables []*typedsql.Table) (bool, error) {
	plan, err := m.Plan(ctx, tables)
	if err != nil {
		return false, cli.GeneralError("planning migration", err)
	}
	if len(plan) == 0 {
		return true, nil
	}

	out := cmd.OutOrStdout()
	for _, mig := range plan {
		compiled, err := mig.Compile()
		if err != nil {
			return false, cli.SchemaParseError("compiling "+mig.Table().Name(), err)
		}
		_, _ = fmt.Fprintf(out, "%s;\n", compiled.Text)
	}

	var ok bool
	err = huh.NewConfirm().
		Title(fmt.Sprintf("Apply %d statements?", len(plan))).
		Affirmative("Apply").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		return false, cli.GeneralError("reading confirmation", err)
	}
	return ok, nil
}
