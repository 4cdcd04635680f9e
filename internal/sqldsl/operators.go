package sqldsl

// Comparison operator tokens.
const (
	OpEq      = "="
	OpLike    = "LIKE"
	OpNotLike = "NOT LIKE"
	OpGt      = ">"
	OpGte     = ">="
	OpLt      = "<"
	OpLte     = "<="
)

// Compare represents a binary comparison (left op right).
type Compare struct {
	Left  Expr
	Op    string
	Right Expr
}

func (c Compare) SQL() string { return c.Left.SQL() + " " + c.Op + " " + c.Right.SQL() }

// IsNull represents an IS NULL check.
type IsNull struct {
	Expr Expr
}

func (i IsNull) SQL() string { return i.Expr.SQL() + " IS NULL" }

// IsNotNull represents an IS NOT NULL check.
type IsNotNull struct {
	Expr Expr
}

func (i IsNotNull) SQL() string { return i.Expr.SQL() + " IS NOT NULL" }

// And represents a conjunction of two expressions, each parenthesized.
type And struct {
	Left  Expr
	Right Expr
}

func (a And) SQL() string { return "(" + a.Left.SQL() + ") AND (" + a.Right.SQL() + ")" }

// Or represents a disjunction of two expressions, each parenthesized.
type Or struct {
	Left  Expr
	Right Expr
}

func (o Or) SQL() string { return "(" + o.Left.SQL() + ") OR (" + o.Right.SQL() + ")" }

// Not represents a negated expression.
type Not struct {
	Expr Expr
}

func (n Not) SQL() string { return "NOT (" + n.Expr.SQL() + ")" }
