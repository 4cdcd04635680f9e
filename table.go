package typedsql

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pthm/typedsql/internal/sqldsl"
)

// Table is a named set of columns. It is the unit of joining, inserting,
// updating and migrating, and it is immutable once constructed.
type Table struct {
	name    string
	defs    []ColumnDef
	columns Columns
}

// NewTable declares a table. Column names must be unique within the table,
// compared case-insensitively since PostgreSQL folds unquoted identifiers.
func NewTable(name string, defs ...ColumnDef) (*Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("typedsql: table name is empty")
	}
	t := &Table{
		name:    name,
		defs:    slices.Clone(defs),
		columns: make(Columns, len(defs)),
	}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		folded := strings.ToLower(d.Name)
		if folded == "" {
			return nil, fmt.Errorf("typedsql: table %s: column name is empty", name)
		}
		if seen[folded] {
			return nil, fmt.Errorf("typedsql: table %s: duplicate column %s", name, d.Name)
		}
		seen[folded] = true
		t.columns[d.Name] = &Column{
			table:  t,
			key:    d.Name,
			config: d.Config,
			ref:    sqldsl.Col{Table: name, Column: folded},
		}
	}
	return t, nil
}

// MustNewTable is like NewTable but panics on an invalid declaration.
// Intended for package-level table variables.
func MustNewTable(name string, defs ...ColumnDef) *Table {
	t, err := NewTable(name, defs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Definitions returns the column declarations in declaration order.
func (t *Table) Definitions() []ColumnDef { return slices.Clone(t.defs) }

// Columns returns the table's columns keyed by declared name.
func (t *Table) Columns() Columns { return maps.Clone(t.columns) }

// Column returns the named column, or nil if the table does not declare it.
func (t *Table) Column(name string) *Column { return t.columns[name] }

// orderedColumns returns the columns in declaration order.
func (t *Table) orderedColumns() []*Column {
	cols := make([]*Column, len(t.defs))
	for i, d := range t.defs {
		cols[i] = t.columns[d.Name]
	}
	return cols
}

// owns reports whether c is one of t's columns.
func (t *Table) owns(c *Column) bool {
	return c != nil && c.table == t && t.columns[c.key] == c
}

// Select starts a query projecting every column of the table.
func (t *Table) Select() Query {
	return Query{base: t}
}

// SelectColumns starts a query projecting only the given columns.
func (t *Table) SelectColumns(cols ...*Column) Query {
	return Query{base: t, projection: slices.Clone(cols)}
}

// Insert starts an insert into the table.
func (t *Table) Insert() Insert {
	return Insert{table: t}
}

// Update starts an update of the table.
func (t *Table) Update() Update {
	return Update{table: t}
}

// Migrate returns the DDL builder for the table.
func (t *Table) Migrate() MigrationBuilder {
	return MigrationBuilder{table: t}
}
