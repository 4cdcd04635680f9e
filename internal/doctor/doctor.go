// Package doctor provides health checks for a database managed by typedsql.
//
// The doctor command validates that the database matches the declared schema
// by checking the schema file, connectivity, migration state, declared tables
// and their row counts.
//
// Example usage:
//
//	d := doctor.New(db, "schema.yaml")
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pthm/typedsql"
	"github.com/pthm/typedsql/pkg/driver"
	"github.com/pthm/typedsql/pkg/migrator"
	"github.com/pthm/typedsql/pkg/parser"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Schema File", "Tables").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks against a database and a schema file.
type Doctor struct {
	db         *sql.DB
	schemaPath string

	// countLimit bounds concurrent row count queries.
	countLimit int

	// Populated during Run
	tables []*typedsql.Table
	status *migrator.Status
}

// New creates a new Doctor instance.
func New(db *sql.DB, schemaPath string) *Doctor {
	return &Doctor{
		db:         db,
		schemaPath: schemaPath,
		countLimit: 4,
	}
}

// Run executes all health checks and returns a report. Database checks are
// skipped when the schema is invalid or the database is unreachable.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkSchemaFile(report)
	if d.tables == nil {
		return report, nil
	}
	if !d.checkConnection(ctx, report) {
		return report, nil
	}
	if err := d.checkMigrationState(ctx, report); err != nil {
		return nil, fmt.Errorf("checking migration state: %w", err)
	}
	d.checkTables(report)
	if err := d.checkRowCounts(ctx, report); err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	return report, nil
}

// checkSchemaFile validates the schema file exists and is valid.
func (d *Doctor) checkSchemaFile(report *Report) {
	if _, err := os.Stat(d.schemaPath); err != nil {
		report.AddCheck(CheckResult{
			Category: "Schema File",
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Schema file not found at %s", d.schemaPath),
			FixHint:  "Create a schema file or set 'schema' in typedsql.yaml",
		})
		return
	}

	report.AddCheck(CheckResult{
		Category: "Schema File",
		Name:     "exists",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema file exists at %s", d.schemaPath),
	})

	tables, err := parser.ParseSchema(d.schemaPath)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Schema File",
			Name:     "valid",
			Status:   StatusFail,
			Message:  "Schema is invalid",
			Details:  err.Error(),
			FixHint:  "Run 'typedsql validate' to see detailed errors",
		})
		return
	}
	d.tables = tables

	columnCount := 0
	for _, t := range tables {
		columnCount += len(t.Definitions())
	}

	report.AddCheck(CheckResult{
		Category: "Schema File",
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema is valid (%d tables, %d columns)", len(tables), columnCount),
	})
}

// checkConnection reports whether the database answers a ping.
func (d *Doctor) checkConnection(ctx context.Context, report *Report) bool {
	if err := d.db.PingContext(ctx); err != nil {
		report.AddCheck(CheckResult{
			Category: "Database",
			Name:     "reachable",
			Status:   StatusFail,
			Message:  "Database is not reachable",
			Details:  err.Error(),
			FixHint:  "Check database.url or the TYPEDSQL_DATABASE_* environment variables",
		})
		return false
	}

	report.AddCheck(CheckResult{
		Category: "Database",
		Name:     "reachable",
		Status:   StatusPass,
		Message:  "Database is reachable",
	})
	return true
}

// checkMigrationState validates the migration tracking table and state.
func (d *Doctor) checkMigrationState(ctx context.Context, report *Report) error {
	status, err := migrator.NewMigrator(d.db).GetStatus(ctx, d.tables)
	if err != nil {
		return err
	}
	d.status = status

	if !status.TrackingTableExists {
		report.AddCheck(CheckResult{
			Category: "Migration State",
			Name:     "table_exists",
			Status:   StatusWarn,
			Message:  migrator.TrackingTableName + " table does not exist",
			Details:  "Migration tracking is not set up",
			FixHint:  "Run 'typedsql migrate' to create it",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: "Migration State",
		Name:     "table_exists",
		Status:   StatusPass,
		Message:  migrator.TrackingTableName + " table exists",
	})

	last := status.LastMigration
	if last == nil {
		report.AddCheck(CheckResult{
			Category: "Migration State",
			Name:     "migrated",
			Status:   StatusWarn,
			Message:  "No migration records found",
			FixHint:  "Run 'typedsql migrate' to apply the schema",
		})
		return nil
	}

	report.AddCheck(CheckResult{
		Category: "Migration State",
		Name:     "migrated",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Schema migrated (%d tables tracked)", len(last.TableNames)),
	})

	checksum, err := migrator.ComputeSchemaChecksum(d.tables)
	if err != nil {
		return err
	}

	switch {
	case checksum != last.SchemaChecksum:
		report.AddCheck(CheckResult{
			Category: "Migration State",
			Name:     "schema_sync",
			Status:   StatusWarn,
			Message:  "Schema file has changed since last migration",
			Details:  fmt.Sprintf("File checksum: %s\nDB checksum:   %s", short(checksum), short(last.SchemaChecksum)),
			FixHint:  "Run 'typedsql migrate' to apply changes",
		})
	case last.FormatVersion != migrator.FormatVersion:
		report.AddCheck(CheckResult{
			Category: "Migration State",
			Name:     "schema_sync",
			Status:   StatusWarn,
			Message:  "Format version has changed",
			Details:  fmt.Sprintf("Current: %s, DB: %s", migrator.FormatVersion, last.FormatVersion),
			FixHint:  "Run 'typedsql migrate --force' to re-record the schema",
		})
	default:
		report.AddCheck(CheckResult{
			Category: "Migration State",
			Name:     "schema_sync",
			Status:   StatusPass,
			Message:  "Schema is in sync with database",
		})
	}
	return nil
}

// checkTables reports each declared table as present, missing or missing
// columns.
func (d *Doctor) checkTables(report *Report) {
	for _, ts := range d.status.Tables {
		switch {
		case !ts.Exists:
			report.AddCheck(CheckResult{
				Category: "Tables",
				Name:     ts.Name,
				Status:   StatusFail,
				Message:  fmt.Sprintf("Table %s does not exist", ts.Name),
				FixHint:  "Run 'typedsql migrate' to create it",
			})
		case len(ts.MissingColumns) > 0:
			report.AddCheck(CheckResult{
				Category: "Tables",
				Name:     ts.Name,
				Status:   StatusWarn,
				Message:  fmt.Sprintf("Table %s is missing %d columns", ts.Name, len(ts.MissingColumns)),
				Details:  strings.Join(ts.MissingColumns, "\n"),
				FixHint:  "Run 'typedsql migrate' to add them",
			})
		default:
			report.AddCheck(CheckResult{
				Category: "Tables",
				Name:     ts.Name,
				Status:   StatusPass,
				Message:  fmt.Sprintf("Table %s is up to date", ts.Name),
			})
		}
	}
}

// checkRowCounts counts the rows of every existing table concurrently.
func (d *Doctor) checkRowCounts(ctx context.Context, report *Report) error {
	q := driver.NewDB(d.db)
	counts := make([]int64, len(d.tables))
	exists := make([]bool, len(d.tables))

	eg, gtx := errgroup.WithContext(ctx)
	eg.SetLimit(d.countLimit)
	for i, t := range d.tables {
		if !d.status.Tables[i].Exists {
			continue
		}
		exists[i] = true
		eg.Go(func() error {
			n, err := t.Select().Count().Execute(gtx, q)
			if err != nil {
				return fmt.Errorf("counting %s: %w", t.Name(), err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, t := range d.tables {
		if !exists[i] {
			continue
		}
		check := CheckResult{
			Category: "Data",
			Name:     t.Name(),
			Status:   StatusPass,
			Message:  fmt.Sprintf("%s has %d rows", t.Name(), counts[i]),
		}
		if counts[i] == 0 {
			check.Status = StatusWarn
			check.Message = fmt.Sprintf("%s is empty", t.Name())
		}
		report.AddCheck(check)
	}
	return nil
}

func short(checksum string) string {
	if len(checksum) > 16 {
		return checksum[:16] + "..."
	}
	return checksum
}
