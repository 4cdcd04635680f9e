package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pthm/typedsql/internal/cli"
	"github.com/pthm/typedsql/pkg/migrator"
)

var (
	statusDB     string
	statusSchema string
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current schema status",
	Long:  `Compare the declared tables with the database. Exits with code 5 when tables need migrating.`,
	Example: `  # Check status
  typedsql status --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(statusSchema, cfg.Status.Schema, cfg.Schema)

		dsn, err := resolveDSN(statusDB)
		if err != nil {
			return err
		}

		return runStatus(cmd, dsn, schemaPath)
	},
}

func init() {
	f := statusCmd.Flags()
	f.StringVar(&statusDB, "db", "", "database URL")
	f.StringVar(&statusSchema, "schema", "", "path to schema file")
}

func runStatus(cmd *cobra.Command, dsn, schemaPath string) error {
	tables, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}

	db, err := openDB(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	s, err := migrator.NewMigrator(db).GetStatus(context.Background(), tables)
	if err != nil {
		return cli.GeneralError("getting status", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case s.LastMigration != nil:
		_, _ = fmt.Fprintf(out, "Last migration: %s\n", s.LastMigration.SchemaChecksum)
	case s.TrackingTableExists:
		_, _ = fmt.Fprintln(out, "Last migration: none recorded")
	default:
		_, _ = fmt.Fprintf(out, "Last migration: %s missing\n", migrator.TrackingTableName)
	}
	_, _ = fmt.Fprintln(out)

	for _, t := range s.Tables {
		_, _ = fmt.Fprintf(out, "  %-24s %s\n", t.Name, describeTable(t))
	}

	if n := s.Pending(); n > 0 {
		_, _ = fmt.Fprintf(out, "\n%d tables need migrating. Run 'typedsql migrate'.\n", n)
		return cli.PendingError(fmt.Sprintf("%d tables pending", n))
	}
	return nil
}

func describeTable(t migrator.TableStatus) string {
	switch {
	case !t.Exists:
		return failStyle.Render("missing")
	case len(t.MissingColumns) > 0:
		return warnStyle.Render("missing columns: " + strings.Join(t.MissingColumns, ", "))
	default:
		return okStyle.Render("up to date")
	}
}
