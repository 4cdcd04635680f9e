package typedsql

import (
	"context"
	"fmt"
	"slices"

	"github.com/pthm/typedsql/internal/sqldsl"
)

// Insert is an immutable INSERT builder.
type Insert struct {
	table *Table
	rows  []Row
	from  *Query
}

// Values appends rows to insert. The inserted column set is the union of the
// keys present across all rows, ordered as the table declares them. A row
// missing a column another row sets binds NULL for it.
func (i Insert) Values(rows ...Row) Insert {
	i.rows = append(slices.Clip(i.rows), rows...)
	return i
}

// From inserts the result of a query instead of literal rows.
func (i Insert) From(q Query) Insert {
	i.from = &q
	return i
}

// Compile renders the INSERT statement.
func (i Insert) Compile() (CompiledQuery, error) {
	if i.from != nil {
		sub, err := i.from.Compile()
		if err != nil {
			return CompiledQuery{}, fmt.Errorf("compiling insert into %s: %w", i.table.name, err)
		}
		stmt := sqldsl.InsertSelectStmt{Table: i.table.name, Query: sqldsl.Raw(sub.Text)}
		return CompiledQuery{Text: stmt.SQL(), Values: sub.Values}, nil
	}

	if len(i.rows) == 0 {
		return CompiledQuery{}, fmt.Errorf("insert into %s: %w", i.table.name, ErrNoRows)
	}
	cols, err := i.columns()
	if err != nil {
		return CompiledQuery{}, err
	}

	stmt := sqldsl.InsertStmt{Table: i.table.name, Returning: sqldsl.Star}
	for _, d := range cols {
		stmt.Columns = append(stmt.Columns, d.Name)
	}
	var vs Values
	for _, row := range i.rows {
		exprs := make([]sqldsl.Expr, len(cols))
		for n, d := range cols {
			exprs[n], vs = vs.bind(row[d.Name])
		}
		stmt.Rows = append(stmt.Rows, exprs)
	}
	return CompiledQuery{Text: stmt.SQL(), Values: vs}, nil
}

func (i Insert) columns() ([]ColumnDef, error) {
	present := make(map[string]bool)
	for _, row := range i.rows {
		for key := range row {
			if i.table.columns[key] == nil {
				return nil, fmt.Errorf("insert into %s: %w: %s", i.table.name, ErrColumnNotFound, key)
			}
			present[key] = true
		}
	}
	var cols []ColumnDef
	for _, d := range i.table.defs {
		if present[d.Name] {
			cols = append(cols, d)
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("insert into %s: %w", i.table.name, ErrNoColumnsSet)
	}
	return cols, nil
}

// Execute runs the insert and returns the inserted rows.
func (i Insert) Execute(ctx context.Context, db Querier) ([]Row, error) {
	compiled, err := i.Compile()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("executing insert into %s: %w", i.table.name, err)
	}
	return rows, nil
}
