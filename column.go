package typedsql

import (
	"fmt"
	"strings"

	"github.com/pthm/typedsql/internal/sqldsl"
)

// ColumnType is the declared type of a column.
type ColumnType int

const (
	String ColumnType = iota + 1
	Number
	PrimaryKey
)

func (t ColumnType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case PrimaryKey:
		return "primary_key"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// ParseColumnType parses the names returned by ColumnType.String.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return String, nil
	case "number":
		return Number, nil
	case "primary_key", "primarykey":
		return PrimaryKey, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumnType, s)
	}
}

// ColumnConfig holds the declaration of a single column.
type ColumnConfig struct {
	Type     ColumnType
	Nullable bool
	// DatabaseType overrides the DDL type derived from Type.
	DatabaseType string
	// Options is appended verbatim to the column's DDL, e.g. "PRIMARY KEY".
	Options string
}

// DDLType returns the database type used in CREATE TABLE and ADD COLUMN.
func (c ColumnConfig) DDLType() (string, error) {
	if c.DatabaseType != "" {
		return c.DatabaseType, nil
	}
	switch c.Type {
	case PrimaryKey:
		return "serial", nil
	case Number:
		return "bigint", nil
	case String:
		return "varchar(256)", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownColumnType, c.Type)
	}
}

// ColumnDef is a named column declaration. Tables keep their definitions in
// declaration order, which fixes the order of projected, inserted and
// created columns.
type ColumnDef struct {
	Name   string
	Config ColumnConfig
}

// StringColumn declares a non-nullable String column.
func StringColumn(name string) ColumnDef {
	return ColumnDef{Name: name, Config: ColumnConfig{Type: String}}
}

// NumberColumn declares a non-nullable Number column.
func NumberColumn(name string) ColumnDef {
	return ColumnDef{Name: name, Config: ColumnConfig{Type: Number}}
}

// PrimaryKeyColumn declares a PrimaryKey column.
func PrimaryKeyColumn(name string) ColumnDef {
	return ColumnDef{Name: name, Config: ColumnConfig{Type: PrimaryKey}}
}

// Nullable returns a copy of d that allows NULL.
func (d ColumnDef) Nullable() ColumnDef {
	d.Config.Nullable = true
	return d
}

// WithOptions returns a copy of d with DDL options set.
func (d ColumnDef) WithOptions(options string) ColumnDef {
	d.Config.Options = options
	return d
}

// WithDatabaseType returns a copy of d with the DDL type overridden.
func (d ColumnDef) WithDatabaseType(dbType string) ColumnDef {
	d.Config.DatabaseType = dbType
	return d
}

func (d ColumnDef) ddl() (sqldsl.ColumnDef, error) {
	typ, err := d.Config.DDLType()
	if err != nil {
		return sqldsl.ColumnDef{}, fmt.Errorf("column %s: %w", d.Name, err)
	}
	return sqldsl.ColumnDef{
		Name:    d.Name,
		Type:    typ,
		NotNull: !d.Config.Nullable,
		Options: d.Config.Options,
	}, nil
}

// Column is one attribute of exactly one Table. Columns are created by
// NewTable and never change afterwards.
type Column struct {
	table  *Table
	key    string
	config ColumnConfig
	ref    sqldsl.Col
}

// Name returns the key the column was declared with.
func (c *Column) Name() string { return c.key }

// Table returns the owning table.
func (c *Column) Table() *Table { return c.table }

// Config returns the column declaration.
func (c *Column) Config() ColumnConfig { return c.config }

// QualifiedName returns "table"."column" with the column key lower-cased.
func (c *Column) QualifiedName() string { return c.ref.SQL() }

// alias is the output name used in projections: table_column.
func (c *Column) alias() string { return c.table.name + "_" + c.ref.Column }

// Eqls compares the column for equality with a value or another column.
func (c *Column) Eqls(v any) Comparison { return c.compare(Equals, v) }

// Like matches the column against a LIKE pattern.
func (c *Column) Like(pattern any) Comparison { return c.compare(Like, pattern) }

// Lt compares the column with <.
func (c *Column) Lt(v any) Comparison { return c.compare(LessThan, v) }

// Lte compares the column with <=.
func (c *Column) Lte(v any) Comparison { return c.compare(LessThanOrEqual, v) }

// Gt compares the column with >.
func (c *Column) Gt(v any) Comparison { return c.compare(GreaterThan, v) }

// Gte compares the column with >=.
func (c *Column) Gte(v any) Comparison { return c.compare(GreaterThanOrEqual, v) }

// IsNull checks the column for NULL.
func (c *Column) IsNull() NullCheck { return NullCheck{Column: c, Op: IsNull} }

func (c *Column) compare(op ColumnOp, v any) Comparison {
	return Comparison{Column: c, Op: op, Value: v}
}

func (c *Column) String() string {
	if c == nil {
		return "<nil column>"
	}
	return c.QualifiedName()
}

// Columns maps column keys to the columns of one table.
type Columns map[string]*Column
