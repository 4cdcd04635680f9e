// Package sqldsl provides typed building blocks for rendering PostgreSQL
// statements.
//
// # Overview
//
// The typedsql builders never concatenate SQL by hand. They lower their state
// into values from this package and call SQL() on the result. Every statement
// renders on a single line with single spaces between clauses, so compiled
// text is stable and can be compared byte for byte in tests.
//
// # Core Interfaces
//
// All DSL types implement Expr, which defines a SQL() method returning the
// PostgreSQL syntax for the node. Statements implement the same interface so a
// SELECT can be embedded in an INSERT.
//
// # Expression Types
//
//	Col{Table: "users", Column: "id"} // "users"."id"
//	Placeholder(1)                    // $1
//	Raw("*")                          // escape hatch
//	Alias{Expr: col, Name: "users_id"} // "users"."id" as "users_id"
//	Func{Name: "count", Args: ...}    // count(*)
//
// Operators:
//
//	Compare{Left: col, Op: OpEq, Right: Placeholder(1)} // "users"."id" = $1
//	IsNull{Expr: col}                                   // "users"."name" IS NULL
//	IsNotNull{Expr: col}                                // "users"."name" IS NOT NULL
//	And{Left: a, Right: b}                              // (a) AND (b)
//	Or{Left: a, Right: b}                               // (a) OR (b)
//	Not{Expr: e}                                        // NOT (e)
//
// # Statement Types
//
//	SelectStmt{ColumnExprs: cols, From: "users", Joins: joins, Where: pred}
//	InsertStmt{Table: "users", Columns: []string{"name"}, Rows: rows}
//	InsertSelectStmt{Table: "archive", Query: selectStmt}
//	UpdateStmt{Table: "users", Set: assignments, Where: pred}
//	CreateTableStmt{Table: "users", Columns: defs}
//	AlterTableStmt{Table: "users", AddColumns: defs}
package sqldsl
