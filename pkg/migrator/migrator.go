package migrator

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/pthm/typedsql"
	"github.com/pthm/typedsql/pkg/driver"
)

// FormatVersion is incremented when DDL rendering changes in a way that
// should re-run migrations even if the schema checksum matches.
const FormatVersion = "1"

// TrackingTableName is the table migrations are recorded in.
const TrackingTableName = "typedsql_migrations"

var trackingTable = typedsql.MustNewTable(TrackingTableName,
	typedsql.PrimaryKeyColumn("id").WithOptions("PRIMARY KEY"),
	typedsql.StringColumn("schema_checksum").WithDatabaseType("text"),
	typedsql.StringColumn("format_version").WithDatabaseType("text"),
	typedsql.StringColumn("table_names").WithDatabaseType("text[]"),
	typedsql.StringColumn("applied_at").WithDatabaseType("timestamptz").WithOptions("DEFAULT now()"),
)

// TrackingTable returns the declaration of the migration tracking table.
func TrackingTable() *typedsql.Table { return trackingTable }

// MigrateOptions controls migration behavior.
type MigrateOptions struct {
	// DryRun outputs SQL to the provided writer without applying changes to the database.
	// The database is still read to decide which tables need creating or altering.
	DryRun io.Writer

	// Force re-runs migration even if the schema is unchanged.
	Force bool
}

// MigrationRecord represents a row in the typedsql_migrations table.
type MigrationRecord struct {
	SchemaChecksum string
	FormatVersion  string
	TableNames     []string
}

// Migrator brings a database in line with a set of table declarations. It
// only ever creates tables and adds columns; it never drops or alters
// existing ones. Running it again with the same tables is a no-op.
//
// # Usage
//
// Use the convenience functions in this package for schema files:
//
//	err := migrator.Migrate(ctx, db, "schema.yaml")
//
// Use the Migrator directly with declared tables:
//
//	m := migrator.NewMigrator(db, migrator.WithLogger(log.Logger))
//	skipped, err := m.Migrate(ctx, []*typedsql.Table{users, articles}, migrator.MigrateOptions{})
type Migrator struct {
	db     Execer
	logger zerolog.Logger
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger logs applied statements and skip decisions.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Migrator) { m.logger = logger }
}

// NewMigrator creates a new schema migrator.
// The Execer is typically *sql.DB but can be *sql.Tx for testing.
func NewMigrator(db Execer, opts ...Option) *Migrator {
	m := &Migrator{db: db, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ComputeSchemaChecksum returns a SHA256 hash of the CREATE TABLE
// statements for tables. Formatting changes to a schema file that do not
// change the rendered DDL keep the same checksum.
func ComputeSchemaChecksum(tables []*typedsql.Table) (string, error) {
	h := sha256.New()
	for _, t := range tables {
		compiled, err := t.Migrate().Create().Compile()
		if err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, compiled.Text)
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

const probeQuery = `SELECT table_name, column_name, data_type FROM information_schema.columns ` +
	`WHERE table_schema = current_schema() AND table_name::text = ANY($1::text[]) ORDER BY table_name, ordinal_position`

// Probe reads the current columns of tables in one query. Tables that do
// not exist are absent from the result, which is keyed by table name.
func (m *Migrator) Probe(ctx context.Context, tables []*typedsql.Table) (map[string]typedsql.TableDefinition, error) {
	return probe(ctx, m.db, tables)
}

func probe(ctx context.Context, db Execer, tables []*typedsql.Table) (map[string]typedsql.TableDefinition, error) {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = strings.ToLower(t.Name())
	}

	rows, err := db.QueryContext(ctx, probeQuery, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("probing information_schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]typedsql.TableDefinition, len(tables))
	for rows.Next() {
		var table string
		var col typedsql.ColumnInfo
		if err := rows.Scan(&table, &col.ColumnName, &col.DataType); err != nil {
			return nil, fmt.Errorf("scanning column info: %w", err)
		}
		found[table] = append(found[table], col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("probing information_schema: %w", err)
	}

	defs := make(map[string]typedsql.TableDefinition, len(found))
	for _, t := range tables {
		if def, ok := found[strings.ToLower(t.Name())]; ok {
			defs[t.Name()] = def
		}
	}
	return defs, nil
}

// Plan returns the migrations needed to bring the database in line with
// tables: a create for every missing table and an update for every table
// missing columns. Tables that are up to date are left out.
func (m *Migrator) Plan(ctx context.Context, tables []*typedsql.Table) ([]typedsql.Migration, error) {
	return plan(ctx, m.db, tables)
}

func plan(ctx context.Context, db Execer, tables []*typedsql.Table) ([]typedsql.Migration, error) {
	defs, err := probe(ctx, db, tables)
	if err != nil {
		return nil, err
	}

	var migrations []typedsql.Migration
	for _, t := range tables {
		def, ok := defs[t.Name()]
		if !ok {
			migrations = append(migrations, t.Migrate().Create())
			continue
		}
		if mig := t.Migrate().Update(def); !mig.Empty() {
			migrations = append(migrations, mig)
		}
	}
	return migrations, nil
}

// Migrate creates missing tables and adds missing columns, then records the
// schema checksum. It returns skipped=true when the checksum matches the
// last recorded migration and neither Force nor DryRun is set.
//
// Everything is applied in one transaction when the Execer supports BeginTx.
func (m *Migrator) Migrate(ctx context.Context, tables []*typedsql.Table, opts MigrateOptions) (skipped bool, err error) {
	if err := checkTables(tables); err != nil {
		return false, err
	}

	checksum, err := ComputeSchemaChecksum(tables)
	if err != nil {
		return false, fmt.Errorf("computing schema checksum: %w", err)
	}

	if !opts.Force && opts.DryRun == nil {
		last, err := m.getLastMigration(ctx, m.db)
		if err != nil {
			return false, fmt.Errorf("checking last migration: %w", err)
		}
		if shouldSkipMigration(last, checksum) {
			m.logger.Info().Str("checksum", checksum).Msg("schema unchanged, skipping migration")
			return true, nil
		}
	}

	if opts.DryRun != nil {
		return false, m.dryRun(ctx, opts.DryRun, tables, checksum)
	}

	if txer, ok := m.db.(txBeginner); ok {
		tx, err := txer.BeginTx(ctx, nil)
		if err != nil {
			return false, fmt.Errorf("starting transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := m.apply(ctx, tx, tables, checksum); err != nil {
			return false, err
		}
		return false, tx.Commit()
	}

	// Fall back to non-transactional (for *sql.Conn and *sql.Tx)
	return false, m.apply(ctx, m.db, tables, checksum)
}

func checkTables(tables []*typedsql.Table) error {
	if len(tables) == 0 {
		return errors.New("no tables to migrate")
	}
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		name := strings.ToLower(t.Name())
		if name == TrackingTableName {
			return fmt.Errorf("table name %s is reserved", t.Name())
		}
		if seen[name] {
			return fmt.Errorf("duplicate table %s", t.Name())
		}
		seen[name] = true
	}
	return nil
}

// apply runs the plan, tracking table included, and records the migration.
func (m *Migrator) apply(ctx context.Context, db Execer, tables []*typedsql.Table, checksum string) error {
	q := driver.NewDB(db, driver.WithEcho(m.logger))

	migrations, err := plan(ctx, db, append([]*typedsql.Table{trackingTable}, tables...))
	if err != nil {
		return err
	}
	for _, mig := range migrations {
		if err := mig.Execute(ctx, q); err != nil {
			return err
		}
		m.logger.Info().
			Str("table", mig.Table().Name()).
			Bool("create", mig.Creates()).
			Int("columns", len(mig.Columns())).
			Msg("applied migration")
	}

	_, err = trackingTable.Insert().Values(typedsql.Row{
		"schema_checksum": checksum,
		"format_version":  FormatVersion,
		"table_names":     pq.Array(tableNames(tables)),
	}).Execute(ctx, q)
	if err != nil {
		return fmt.Errorf("inserting migration record: %w", err)
	}
	return nil
}

// GetLastMigration returns the most recent migration record, or nil if none exists.
func (m *Migrator) GetLastMigration(ctx context.Context) (*MigrationRecord, error) {
	return m.getLastMigration(ctx, m.db)
}

func (m *Migrator) getLastMigration(ctx context.Context, db Execer) (*MigrationRecord, error) {
	exists, err := relationExists(ctx, db, TrackingTableName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil // No migrations table yet
	}

	var rec MigrationRecord
	err = db.QueryRowContext(ctx, `
		SELECT schema_checksum, format_version, table_names
		FROM typedsql_migrations
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&rec.SchemaChecksum, &rec.FormatVersion, pq.Array(&rec.TableNames))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No previous migration
	}
	if err != nil {
		return nil, fmt.Errorf("querying last migration: %w", err)
	}
	return &rec, nil
}

// shouldSkipMigration returns true if the schema and format version are unchanged.
func shouldSkipMigration(last *MigrationRecord, checksum string) bool {
	if last == nil {
		return false
	}
	return last.SchemaChecksum == checksum && last.FormatVersion == FormatVersion
}

// relationExists reports whether a table, view or materialized view named
// name exists in the current schema.
func relationExists(ctx context.Context, db Execer, name string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_class c
			JOIN pg_namespace n ON n.oid = c.relnamespace
			WHERE c.relname = $1
			AND n.nspname = current_schema()
			AND c.relkind IN ('r', 'v', 'm', 'p')
		)
	`, strings.ToLower(name)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", name, err)
	}
	return exists, nil
}

// TableStatus describes one declared table against the database.
type TableStatus struct {
	Name           string
	Exists         bool
	MissingColumns []string
}

// UpToDate reports whether the table exists with every declared column.
func (s TableStatus) UpToDate() bool {
	return s.Exists && len(s.MissingColumns) == 0
}

// Status represents the current migration state.
type Status struct {
	// TrackingTableExists indicates if typedsql_migrations exists.
	TrackingTableExists bool

	// LastMigration is the most recent migration record, nil if none.
	LastMigration *MigrationRecord

	// Tables holds one entry per declared table, in declaration order.
	Tables []TableStatus
}

// Pending returns the number of tables that need migrating.
func (s *Status) Pending() int {
	n := 0
	for _, t := range s.Tables {
		if !t.UpToDate() {
			n++
		}
	}
	return n
}

// GetStatus compares tables against the database without changing it.
func (m *Migrator) GetStatus(ctx context.Context, tables []*typedsql.Table) (*Status, error) {
	status := &Status{}

	last, err := m.getLastMigration(ctx, m.db)
	if err != nil {
		return nil, err
	}
	status.LastMigration = last
	status.TrackingTableExists, err = relationExists(ctx, m.db, TrackingTableName)
	if err != nil {
		return nil, err
	}

	defs, err := probe(ctx, m.db, tables)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		ts := TableStatus{Name: t.Name()}
		if def, ok := defs[t.Name()]; ok {
			ts.Exists = true
			for _, c := range t.Migrate().Update(def).Columns() {
				ts.MissingColumns = append(ts.MissingColumns, c.Name)
			}
		}
		status.Tables = append(status.Tables, ts)
	}
	return status, nil
}

func tableNames(tables []*typedsql.Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name()
	}
	slices.Sort(names)
	return names
}

// dryRun writes the migration SQL to w.
func (m *Migrator) dryRun(ctx context.Context, w io.Writer, tables []*typedsql.Table, checksum string) error {
	tracking, err := plan(ctx, m.db, []*typedsql.Table{trackingTable})
	if err != nil {
		return err
	}
	migrations, err := plan(ctx, m.db, tables)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "-- typedsql migration (dry-run)\n")
	_, _ = fmt.Fprintf(w, "-- Schema checksum: %s\n", checksum)
	_, _ = fmt.Fprintf(w, "-- Format version: %s\n", FormatVersion)
	_, _ = fmt.Fprintf(w, "\n")

	section(w, "DDL: Migration Tracking Table")
	if err := writeMigrations(w, tracking); err != nil {
		return err
	}

	section(w, fmt.Sprintf("Table Migrations (%d statements)", len(migrations)))
	if err := writeMigrations(w, migrations); err != nil {
		return err
	}

	section(w, "Migration Record")
	names := tableNames(tables)
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + strings.ReplaceAll(n, "'", "''") + "'"
	}
	_, _ = fmt.Fprintf(w, "INSERT INTO %s (schema_checksum, format_version, table_names)\n", TrackingTableName)
	_, _ = fmt.Fprintf(w, "VALUES ('%s', '%s', ARRAY[%s]);\n", checksum, FormatVersion, strings.Join(quoted, ", "))
	return nil
}

func section(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "-- ============================================================\n")
	_, _ = fmt.Fprintf(w, "-- %s\n", title)
	_, _ = fmt.Fprintf(w, "-- ============================================================\n\n")
}

func writeMigrations(w io.Writer, migrations []typedsql.Migration) error {
	if len(migrations) == 0 {
		_, _ = fmt.Fprintf(w, "-- up to date\n\n")
		return nil
	}
	for _, mig := range migrations {
		compiled, err := mig.Compile()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s;\n\n", compiled.Text)
	}
	return nil
}
