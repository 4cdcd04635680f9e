package typedsql

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cast"

	"github.com/pthm/typedsql/internal/sqldsl"
)

// JoinKind selects the join token emitted for a join step.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

func (k JoinKind) sql() string {
	if k == LeftJoin {
		return sqldsl.JoinLeft
	}
	return sqldsl.JoinInner
}

// PredicateFunc builds an expression from the columns of the tables in
// scope, base table first and joined tables in join order.
type PredicateFunc func(cols ...Columns) Expression

type join struct {
	table *Table
	on    Expression
	kind  JoinKind
}

// Query is an immutable SELECT builder over a base table and zero or more
// joined tables. Every method returns a new Query; the receiver is never
// modified, so a base query can be reused to derive several others.
type Query struct {
	base       *Table
	projection []*Column
	joins      []join
	predicates []Expression
}

// Tables returns the tables in scope: the base table, then joined tables in
// join order.
func (q Query) Tables() []*Table {
	tables := make([]*Table, 0, len(q.joins)+1)
	tables = append(tables, q.base)
	for _, j := range q.joins {
		tables = append(tables, j.table)
	}
	return tables
}

// Where adds a predicate. Multiple predicates are joined with AND.
// A nil predicate leaves the query unchanged.
func (q Query) Where(e Expression) Query {
	if e == nil {
		return q
	}
	q.predicates = append(slices.Clip(q.predicates), e)
	return q
}

// WhereFunc adds the predicate returned by fn, which receives the columns of
// every table in scope.
func (q Query) WhereFunc(fn PredicateFunc) Query {
	return q.Where(fn(scope(q.Tables()).columns()...))
}

// Join joins t on the given predicate. The kind defaults to InnerJoin.
func (q Query) Join(t *Table, on Expression, kind ...JoinKind) Query {
	k := InnerJoin
	if len(kind) > 0 {
		k = kind[0]
	}
	q.joins = append(slices.Clip(q.joins), join{table: t, on: on, kind: k})
	return q
}

// JoinFunc joins t on the predicate returned by fn. fn receives the columns
// of every table in scope including t, which is last.
func (q Query) JoinFunc(t *Table, fn PredicateFunc, kind ...JoinKind) Query {
	cols := append(scope(q.Tables()).columns(), t.Columns())
	return q.Join(t, fn(cols...), kind...)
}

// Compile renders the SELECT statement.
func (q Query) Compile() (CompiledQuery, error) {
	projection, err := q.projectionExprs()
	if err != nil {
		return CompiledQuery{}, err
	}
	stmt, vs, err := q.selectStmt(projection)
	if err != nil {
		return CompiledQuery{}, err
	}
	return CompiledQuery{Text: stmt.SQL(), Values: vs}, nil
}

func (q Query) projectionExprs() ([]sqldsl.Expr, error) {
	cols := q.projection
	if len(cols) == 0 {
		for _, t := range q.Tables() {
			cols = append(cols, t.orderedColumns()...)
		}
	}
	s := scope(q.Tables())
	exprs := make([]sqldsl.Expr, len(cols))
	for i, c := range cols {
		ref, err := s.resolve(c)
		if err != nil {
			return nil, fmt.Errorf("projecting: %w", err)
		}
		exprs[i] = sqldsl.Alias{Expr: ref, Name: c.alias()}
	}
	return exprs, nil
}

// selectStmt compiles the FROM, JOIN and WHERE clauses. Join predicates are
// bound before WHERE predicates. Each ON clause may reference the tables
// joined so far, including its own.
func (q Query) selectStmt(columns []sqldsl.Expr) (sqldsl.SelectStmt, Values, error) {
	tables := scope(q.Tables())
	stmt := sqldsl.SelectStmt{ColumnExprs: columns, From: q.base.name}

	var vs Values
	for i, j := range q.joins {
		on, next, err := compileExpression(tables[:i+2], j.on, vs)
		if err != nil {
			return sqldsl.SelectStmt{}, nil, fmt.Errorf("compiling join %s: %w", j.table.name, err)
		}
		vs = next
		stmt.Joins = append(stmt.Joins, sqldsl.JoinClause{Type: j.kind.sql(), Table: j.table.name, On: on})
	}

	where, vs, err := compilePredicates(tables, q.predicates, vs)
	if err != nil {
		return sqldsl.SelectStmt{}, nil, fmt.Errorf("compiling where: %w", err)
	}
	stmt.Where = where
	return stmt, vs, nil
}

// Execute runs a single-table query and returns its rows with the table
// prefix stripped from every key. Queries with joins return ErrJoinedQuery.
func (q Query) Execute(ctx context.Context, db Querier) ([]Row, error) {
	if len(q.joins) > 0 {
		return nil, ErrJoinedQuery
	}
	tuples, err := q.ExecuteJoined(ctx, db)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(tuples))
	for i, tuple := range tuples {
		rows[i] = tuple[0]
	}
	return rows, nil
}

// ExecuteJoined runs the query and returns one tuple per result row, holding
// one Row per table in scope.
func (q Query) ExecuteJoined(ctx context.Context, db Querier) ([][]Row, error) {
	compiled, err := q.Compile()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("executing select on %s: %w", q.base.name, err)
	}
	return q.Reshape(rows), nil
}

// Count returns a query counting the rows this query would return.
func (q Query) Count() CountQuery {
	return CountQuery{query: q}
}

// CountQuery is the SELECT count(*) sibling of a Query.
type CountQuery struct {
	query Query
}

// Compile renders SELECT count(*) with the query's joins and predicates.
func (c CountQuery) Compile() (CompiledQuery, error) {
	count := sqldsl.Func{Name: "count", Args: []sqldsl.Expr{sqldsl.Star}}
	stmt, vs, err := c.query.selectStmt([]sqldsl.Expr{count})
	if err != nil {
		return CompiledQuery{}, err
	}
	return CompiledQuery{Text: stmt.SQL(), Values: vs}, nil
}

// Execute runs the count and parses the single returned column.
func (c CountQuery) Execute(ctx context.Context, db Querier) (int64, error) {
	compiled, err := c.Compile()
	if err != nil {
		return 0, err
	}
	rows, err := db.Query(ctx, compiled)
	if err != nil {
		return 0, fmt.Errorf("executing count on %s: %w", c.query.base.name, err)
	}
	if len(rows) != 1 {
		return 0, fmt.Errorf("count on %s returned %d rows", c.query.base.name, len(rows))
	}
	for _, v := range rows[0] {
		n, err := cast.ToInt64E(v)
		if err != nil {
			return 0, fmt.Errorf("parsing count: %w", err)
		}
		return n, nil
	}
	return 0, errors.New("count returned no columns")
}
