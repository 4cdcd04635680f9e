package sqldsl

import (
	"strconv"
	"strings"
)

// Expr is the interface that all SQL expression and statement types implement.
type Expr interface {
	SQL() string
}

// QuoteIdent renders name as a double-quoted identifier, doubling any
// embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Col represents a qualified column reference ("table"."column").
type Col struct {
	Table  string
	Column string
}

// SQL renders the column reference.
func (c Col) SQL() string {
	if c.Table == "" {
		return QuoteIdent(c.Column)
	}
	return QuoteIdent(c.Table) + "." + QuoteIdent(c.Column)
}

// Placeholder is a 1-based positional parameter reference.
type Placeholder int

// SQL renders the placeholder as $N.
func (p Placeholder) SQL() string {
	return "$" + strconv.Itoa(int(p))
}

// Raw is an escape hatch for arbitrary SQL.
type Raw string

// SQL renders the raw SQL as-is.
func (r Raw) SQL() string {
	return string(r)
}

// Star renders *.
const Star = Raw("*")

// Alias wraps an expression with a quoted output name (expr as "name").
type Alias struct {
	Expr Expr
	Name string
}

// SQL renders the aliased expression.
func (a Alias) SQL() string {
	return a.Expr.SQL() + " as " + QuoteIdent(a.Name)
}

// Func represents a SQL function call.
type Func struct {
	Name string
	Args []Expr
}

// SQL renders the function call.
func (f Func) SQL() string {
	return f.Name + "(" + joinExprs(f.Args, ", ") + ")"
}

// Paren wraps an expression in parentheses.
type Paren struct {
	Expr Expr
}

// SQL renders the parenthesized expression.
func (p Paren) SQL() string {
	return "(" + p.Expr.SQL() + ")"
}

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.SQL()
	}
	return strings.Join(parts, sep)
}
