package sqldsl

import "strings"

// InsertStmt represents a multi-row INSERT ... VALUES statement.
type InsertStmt struct {
	Table     string
	Columns   []string
	Rows      [][]Expr
	Returning Expr
}

// SQL renders the INSERT statement.
//
// Example: INSERT INTO users(id, name) VALUES ($1, $2), ($3, $4) RETURNING *
func (i InsertStmt) SQL() string {
	rows := make([]string, len(i.Rows))
	for n, row := range i.Rows {
		rows[n] = "(" + joinExprs(row, ", ") + ")"
	}
	return Clauses(
		"INSERT INTO "+i.Table+"("+strings.Join(i.Columns, ", ")+")",
		"VALUES "+strings.Join(rows, ", "),
		returningSQL(i.Returning),
	)
}

// InsertSelectStmt represents INSERT INTO table (query).
type InsertSelectStmt struct {
	Table string
	Query Expr
}

// SQL renders the INSERT ... SELECT statement.
func (i InsertSelectStmt) SQL() string {
	return "INSERT INTO " + i.Table + " " + Paren{Expr: i.Query}.SQL()
}

// Assignment is a single column = value pair in an UPDATE SET list.
type Assignment struct {
	Column string
	Value  Expr
}

// SQL renders the assignment.
func (a Assignment) SQL() string {
	return a.Column + " = " + a.Value.SQL()
}

// UpdateStmt represents an UPDATE statement.
type UpdateStmt struct {
	Table     string
	Set       []Assignment
	Where     Expr
	Returning Expr
}

// SQL renders the UPDATE statement.
func (u UpdateStmt) SQL() string {
	sets := make([]string, len(u.Set))
	for i, a := range u.Set {
		sets[i] = a.SQL()
	}
	where := ""
	if u.Where != nil {
		where = "WHERE " + u.Where.SQL()
	}
	return Clauses(
		"UPDATE "+u.Table,
		"SET "+strings.Join(sets, ", "),
		where,
		returningSQL(u.Returning),
	)
}

func returningSQL(e Expr) string {
	if e == nil {
		return ""
	}
	return "RETURNING " + e.SQL()
}
