package sqldsl

import (
	"fmt"
	"strings"
)

// Clauses joins the non-empty parts with single spaces.
// Useful for statements with optional clauses.
func Clauses(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Optf returns formatted string if condition is true, empty string otherwise.
// Useful for optional SQL clauses.
func Optf(cond bool, format string, args ...any) string {
	if !cond {
		return ""
	}
	return fmt.Sprintf(format, args...)
}

// Join types.
const (
	JoinInner = "INNER"
	JoinLeft  = "LEFT"
)

// JoinClause represents a SQL JOIN clause.
type JoinClause struct {
	Type  string // "INNER" or "LEFT"
	Table string
	On    Expr
}

// SQL renders the JOIN clause.
func (j JoinClause) SQL() string {
	if j.On == nil {
		return j.Type + " JOIN " + j.Table
	}
	return j.Type + " JOIN " + j.Table + " ON " + j.On.SQL()
}

// SelectStmt represents a SELECT query.
type SelectStmt struct {
	ColumnExprs []Expr
	From        string
	Joins       []JoinClause
	Where       Expr
}

// SQL renders the SELECT statement.
func (s SelectStmt) SQL() string {
	return Clauses(
		"SELECT "+s.columnsSQL(),
		Optf(s.From != "", "FROM %s", s.From),
		s.joinsSQL(),
		s.whereSQL(),
	)
}

func (s SelectStmt) columnsSQL() string {
	if len(s.ColumnExprs) == 0 {
		return Star.SQL()
	}
	return joinExprs(s.ColumnExprs, ", ")
}

func (s SelectStmt) joinsSQL() string {
	parts := make([]string, len(s.Joins))
	for i, j := range s.Joins {
		parts[i] = j.SQL()
	}
	return strings.Join(parts, " ")
}

func (s SelectStmt) whereSQL() string {
	if s.Where == nil {
		return ""
	}
	return "WHERE " + s.Where.SQL()
}
