// Package typedsql builds parameterized PostgreSQL statements from typed
// table and column declarations.
//
// # Core Concepts
//
// A Table declares its columns once. Columns are combined into boolean
// Expressions with the comparison methods on *Column and the free functions
// And, Or and Negate:
//
//	users := typedsql.MustNewTable("users",
//	    typedsql.PrimaryKeyColumn("id"),
//	    typedsql.StringColumn("name").Nullable(),
//	)
//	id, name := users.Column("id"), users.Column("name")
//
//	expr := typedsql.Or(id.Eqls(1), typedsql.Negate(name.IsNull()))
//
// # Building Statements
//
// Every builder is an immutable value. Where, Join, Set and Values return a
// new builder, so a base query can be shared and specialised freely:
//
//	q := users.Select().Where(id.Eqls(1))
//	compiled, err := q.Compile()
//	// compiled.Text:   SELECT "users"."id" as "users_id", ... WHERE "users"."id" = $1
//	// compiled.Values: [1]
//
// Placeholders are numbered $1..$N strictly in left-to-right compilation
// order, and Values[i-1] binds $i.
//
// # Execution
//
// Compile is pure. Execute hands the compiled statement to a Querier, which
// is implemented by the pgx and database/sql adapters in pkg/driver:
//
//	pool, _ := driver.Open(ctx, dsn)
//	rows, err := users.Select().Where(id.Eqls(1)).Execute(ctx, pool)
//
// # Migrations
//
// Tables also render their own DDL. Create emits CREATE TABLE, and Update
// diffs the declaration against the live columns returned by
// Table.Definition:
//
//	def, _ := users.Definition(ctx, pool)
//	err := users.Migrate().Update(def).Execute(ctx, pool)
package typedsql

import "context"

// CompiledQuery is the output of every builder: SQL text with $N
// placeholders and the values bound to them, in order.
type CompiledQuery struct {
	Text   string
	Values []any
}

// Row is a single result row keyed by column name or alias.
type Row map[string]any

// Querier executes compiled statements. Implementations may be a pool,
// a single connection or a transaction.
type Querier interface {
	Query(ctx context.Context, q CompiledQuery) ([]Row, error)
}
