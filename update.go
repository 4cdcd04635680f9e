package typedsql

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/pthm/typedsql/internal/sqldsl"
)

// Update is an immutable UPDATE builder.
type Update struct {
	table      *Table
	set        Row
	predicates []Expression
}

// Set merges columns to assign. Later calls win for repeated columns.
func (u Update) Set(values Row) Update {
	next := maps.Clone(u.set)
	if next == nil {
		next = make(Row, len(values))
	}
	maps.Copy(next, values)
	u.set = next
	return u
}

// Where adds a predicate over the table's columns. Multiple predicates are
// joined with AND. A nil predicate leaves the builder unchanged.
func (u Update) Where(e Expression) Update {
	if e == nil {
		return u
	}
	u.predicates = append(slices.Clip(u.predicates), e)
	return u
}

// WhereFunc adds the predicate returned by fn, which receives the table's
// columns.
func (u Update) WhereFunc(fn PredicateFunc) Update {
	return u.Where(fn(u.table.Columns()))
}

// Compile renders the UPDATE statement. SET values are bound before WHERE
// values. It returns ErrNoColumnsSet if Set was never called.
func (u Update) Compile() (CompiledQuery, error) {
	if len(u.set) == 0 {
		return CompiledQuery{}, fmt.Errorf("update %s: %w", u.table.name, ErrNoColumnsSet)
	}
	for key := range u.set {
		if u.table.columns[key] == nil {
			return CompiledQuery{}, fmt.Errorf("update %s: %w: %s", u.table.name, ErrColumnNotFound, key)
		}
	}

	stmt := sqldsl.UpdateStmt{Table: u.table.name, Returning: sqldsl.Star}
	var vs Values
	for _, d := range u.table.defs {
		v, ok := u.set[d.Name]
		if !ok {
			continue
		}
		var p sqldsl.Placeholder
		p, vs = vs.bind(v)
		stmt.Set = append(stmt.Set, sqldsl.Assignment{Column: d.Name, Value: p})
	}

	where, vs, err := compilePredicates(scope{u.table}, u.predicates, vs)
	if err != nil {
		return CompiledQuery{}, fmt.Errorf("compiling where: %w", err)
	}
	stmt.Where = where
	return CompiledQuery{Text: stmt.SQL(), Values: vs}, nil
}

// Execute runs the update and returns the updated rows.
func (u Update) Execute(ctx context.Context, db Querier) ([]Row, error) {
	compiled, err := u.Compile()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("executing update %s: %w", u.table.name, err)
	}
	return rows, nil
}
