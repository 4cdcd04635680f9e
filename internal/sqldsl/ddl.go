package sqldsl

import "strings"

// ColumnDef is a column definition inside CREATE TABLE or ADD COLUMN.
type ColumnDef struct {
	Name    string
	Type    string
	NotNull bool
	Options string
}

// SQL renders the column definition: name type [NOT NULL] [options].
func (c ColumnDef) SQL() string {
	return Clauses(c.Name, c.Type, Optf(c.NotNull, "NOT NULL"), strings.TrimSpace(c.Options))
}

// CreateTableStmt represents a CREATE TABLE statement.
type CreateTableStmt struct {
	Table   string
	Columns []ColumnDef
}

// SQL renders the CREATE TABLE statement.
func (c CreateTableStmt) SQL() string {
	defs := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		defs[i] = col.SQL()
	}
	return "CREATE TABLE " + c.Table + " (" + strings.Join(defs, ", ") + ")"
}

// AlterTableStmt represents ALTER TABLE with one ADD COLUMN action per column.
// An AlterTableStmt without columns renders as the empty string.
type AlterTableStmt struct {
	Table      string
	AddColumns []ColumnDef
}

// SQL renders the ALTER TABLE statement.
func (a AlterTableStmt) SQL() string {
	if len(a.AddColumns) == 0 {
		return ""
	}
	actions := make([]string, len(a.AddColumns))
	for i, col := range a.AddColumns {
		actions[i] = "ADD COLUMN " + col.SQL()
	}
	return "ALTER TABLE " + a.Table + " " + strings.Join(actions, ", ")
}
