package typedsql

import "fmt"

// Expression is a node in the boolean predicate algebra. The set of
// variants is closed: Comparison, NullCheck, Not and Composed.
//
// Expressions are immutable values. And, Or and Negate build new nodes and
// never modify their arguments.
type Expression interface {
	expression()
}

// ColumnOp is the operator of a Comparison or NullCheck.
type ColumnOp int

const (
	Equals ColumnOp = iota + 1
	Like
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	IsNull
)

func (op ColumnOp) String() string {
	switch op {
	case Equals:
		return "Equals"
	case Like:
		return "Like"
	case GreaterThan:
		return "GreaterThan"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case LessThan:
		return "LessThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case IsNull:
		return "IsNull"
	default:
		return fmt.Sprintf("ColumnOp(%d)", int(op))
	}
}

// ComposedOp joins two expressions.
type ComposedOp int

const (
	OpAnd ComposedOp = iota + 1
	OpOr
)

func (op ComposedOp) String() string {
	switch op {
	case OpAnd:
		return "And"
	case OpOr:
		return "Or"
	default:
		return fmt.Sprintf("ComposedOp(%d)", int(op))
	}
}

// Comparison compares a column with a bound value. When Value is a *Column
// the comparison is between two columns and nothing is bound.
type Comparison struct {
	Column *Column
	Op     ColumnOp
	Value  any
}

// NullCheck tests a column for NULL. Op is always IsNull for nodes built by
// Column.IsNull.
type NullCheck struct {
	Column *Column
	Op     ColumnOp
}

// Not negates Inner when IsNot is set. A Not with IsNot false is equivalent
// to Inner.
type Not struct {
	IsNot bool
	Inner Expression
}

// Composed joins two expressions with AND or OR.
type Composed struct {
	Left  Expression
	Right Expression
	Op    ComposedOp
}

func (Comparison) expression() {}
func (NullCheck) expression()  {}
func (Not) expression()        {}
func (Composed) expression()   {}

// And returns left AND right.
func And(left, right Expression) Expression {
	return Composed{Left: left, Right: right, Op: OpAnd}
}

// Or returns left OR right.
func Or(left, right Expression) Expression {
	return Composed{Left: left, Right: right, Op: OpOr}
}

// Negate returns NOT e. Negating a Not toggles its flag instead of wrapping
// again, so Negate(Negate(e)) is Not{IsNot: false, Inner: e}.
func Negate(e Expression) Expression {
	if n, ok := e.(Not); ok {
		return Not{IsNot: !n.IsNot, Inner: n.Inner}
	}
	return Not{IsNot: true, Inner: e}
}

// AllOf folds the expressions left to right with And. It returns nil for an
// empty list and the sole element for a list of one.
func AllOf(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	root := exprs[0]
	for _, e := range exprs[1:] {
		root = And(root, e)
	}
	return root
}
