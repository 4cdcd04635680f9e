package typedsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/pthm/typedsql/internal/sqldsl"
)

// ColumnInfo describes an existing database column.
type ColumnInfo struct {
	ColumnName string
	DataType   string
}

// TableDefinition is the list of columns a table currently has in the
// database, as returned by Table.Definition.
type TableDefinition []ColumnInfo

// Has reports whether the definition contains the named column. Names are
// compared case-insensitively.
func (d TableDefinition) Has(name string) bool {
	for _, c := range d {
		if strings.EqualFold(c.ColumnName, name) {
			return true
		}
	}
	return false
}

// Definition reads the table's existing columns from information_schema.
// A table that does not exist yields an empty definition.
func (t *Table) Definition(ctx context.Context, db Querier) (TableDefinition, error) {
	compiled := t.definitionQuery()
	rows, err := db.Query(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("reading definition of %s: %w", t.name, err)
	}
	def := make(TableDefinition, 0, len(rows))
	for _, row := range rows {
		def = append(def, ColumnInfo{
			ColumnName: cast.ToString(row["column_name"]),
			DataType:   cast.ToString(row["data_type"]),
		})
	}
	return def, nil
}

func (t *Table) definitionQuery() CompiledQuery {
	p, vs := Values(nil).bind(strings.ToLower(t.name))
	stmt := sqldsl.SelectStmt{
		ColumnExprs: []sqldsl.Expr{
			sqldsl.Raw("column_name"),
			sqldsl.Raw("data_type"),
		},
		From: "information_schema.columns",
		Where: sqldsl.And{
			Left:  sqldsl.Compare{Left: sqldsl.Raw("table_schema"), Op: sqldsl.OpEq, Right: sqldsl.Raw("current_schema()")},
			Right: sqldsl.Compare{Left: sqldsl.Raw("table_name"), Op: sqldsl.OpEq, Right: p},
		},
	}
	return CompiledQuery{Text: stmt.SQL() + " ORDER BY ordinal_position", Values: vs}
}

// MigrationBuilder renders DDL for a table.
type MigrationBuilder struct {
	table *Table
}

// Create returns a migration that creates the table with every declared
// column.
func (b MigrationBuilder) Create() Migration {
	return Migration{table: b.table, create: true, columns: b.table.Definitions()}
}

// Update returns a migration adding the declared columns that current lacks.
// The migration is empty when nothing is missing.
func (b MigrationBuilder) Update(current TableDefinition) Migration {
	m := Migration{table: b.table}
	for _, d := range b.table.defs {
		if !current.Has(d.Name) {
			m.columns = append(m.columns, d)
		}
	}
	return m
}

// Migration is a compiled-on-demand CREATE TABLE or ALTER TABLE statement.
type Migration struct {
	table   *Table
	create  bool
	columns []ColumnDef
}

// Table returns the migrated table.
func (m Migration) Table() *Table { return m.table }

// Creates reports whether the migration creates the table rather than
// altering it.
func (m Migration) Creates() bool { return m.create }

// Empty reports whether the migration has nothing to do.
func (m Migration) Empty() bool {
	return !m.create && len(m.columns) == 0
}

// Columns returns the columns the migration creates or adds.
func (m Migration) Columns() []ColumnDef {
	return append([]ColumnDef(nil), m.columns...)
}

// Compile renders the DDL. An empty migration compiles to empty text.
func (m Migration) Compile() (CompiledQuery, error) {
	if m.Empty() {
		return CompiledQuery{}, nil
	}
	defs := make([]sqldsl.ColumnDef, len(m.columns))
	for i, d := range m.columns {
		def, err := d.ddl()
		if err != nil {
			return CompiledQuery{}, fmt.Errorf("table %s: %w", m.table.name, err)
		}
		defs[i] = def
	}
	if m.create {
		return CompiledQuery{Text: sqldsl.CreateTableStmt{Table: m.table.name, Columns: defs}.SQL()}, nil
	}
	return CompiledQuery{Text: sqldsl.AlterTableStmt{Table: m.table.name, AddColumns: defs}.SQL()}, nil
}

// Execute runs the migration. An empty migration is a no-op.
func (m Migration) Execute(ctx context.Context, db Querier) error {
	compiled, err := m.Compile()
	if err != nil {
		return err
	}
	if compiled.Text == "" {
		return nil
	}
	if _, err := db.Query(ctx, compiled); err != nil {
		return fmt.Errorf("migrating %s: %w", m.table.name, err)
	}
	return nil
}
