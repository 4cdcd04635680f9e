package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/typedsql/internal/cli"
	"github.com/pthm/typedsql/internal/doctor"
)

var (
	doctorDB      string
	doctorSchema  string
	doctorVerbose bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks",
	Long:  `Run health checks on the schema file and the database it describes.`,
	Example: `  # Run health checks
  typedsql doctor --db postgres://localhost/mydb

  # Run with verbose output
  typedsql doctor --db postgres://localhost/mydb --verbose`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath := resolveString(doctorSchema, cfg.Doctor.Schema, cfg.Schema)
		verboseFlag := resolveBool(doctorVerbose, cfg.Doctor.Verbose, verbose > 0)

		dsn, err := resolveDSN(doctorDB)
		if err != nil {
			return err
		}

		return runDoctor(cmd, dsn, schemaPath, verboseFlag)
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVar(&doctorDB, "db", "", "database URL")
	f.StringVar(&doctorSchema, "schema", "", "path to schema file")
	f.BoolVar(&doctorVerbose, "verbose", false, "show detailed output")
}

func runDoctor(cmd *cobra.Command, dsn, schemaPath string, verboseFlag bool) error {
	// The doctor reports an unreachable database itself, so no ping here.
	db, err := sqlOpen(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	out := cmd.OutOrStdout()
	if !quiet {
		_, _ = fmt.Fprintln(out, "typedsql doctor - Health Check")
	}

	report, err := doctor.New(db, schemaPath).Run(context.Background())
	if err != nil {
		return cli.GeneralError("running doctor", err)
	}

	report.Print(out, verboseFlag)

	if report.HasErrors() {
		return cli.GeneralError("health checks failed", nil)
	}
	return nil
}
