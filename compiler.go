package typedsql

import (
	"fmt"

	"github.com/pthm/typedsql/internal/sqldsl"
)

// scope is the ordered list of tables whose columns a statement may reference.
type scope []*Table

func (s scope) resolve(c *Column) (sqldsl.Col, error) {
	for _, t := range s {
		if t.owns(c) {
			return c.ref, nil
		}
	}
	return sqldsl.Col{}, fmt.Errorf("%w: %s", ErrColumnNotFound, c)
}

func (s scope) columns() []Columns {
	cols := make([]Columns, len(s))
	for i, t := range s {
		cols[i] = t.Columns()
	}
	return cols
}

var comparisonTokens = map[ColumnOp]string{
	Equals:             sqldsl.OpEq,
	Like:               sqldsl.OpLike,
	GreaterThan:        sqldsl.OpGt,
	GreaterThanOrEqual: sqldsl.OpGte,
	LessThan:           sqldsl.OpLt,
	LessThanOrEqual:    sqldsl.OpLte,
}

// compileExpression lowers e into SQL, binding values in left-to-right order.
func compileExpression(s scope, e Expression, vs Values) (sqldsl.Expr, Values, error) {
	switch e := e.(type) {
	case Composed:
		left, vs, err := compileExpression(s, e.Left, vs)
		if err != nil {
			return nil, nil, err
		}
		right, vs, err := compileExpression(s, e.Right, vs)
		if err != nil {
			return nil, nil, err
		}
		switch e.Op {
		case OpAnd:
			return sqldsl.And{Left: left, Right: right}, vs, nil
		case OpOr:
			return sqldsl.Or{Left: left, Right: right}, vs, nil
		default:
			return nil, nil, fmt.Errorf("%w for composed expression: %s", ErrUnknownOperator, e.Op)
		}

	case Comparison:
		token, ok := comparisonTokens[e.Op]
		if !ok {
			return nil, nil, fmt.Errorf("%w for comparison expression: %s", ErrUnknownOperator, e.Op)
		}
		return compileComparison(s, e, token, vs)

	case NullCheck:
		if e.Op != IsNull {
			return nil, nil, fmt.Errorf("%w for column expression: %s", ErrUnknownOperator, e.Op)
		}
		col, err := s.resolve(e.Column)
		if err != nil {
			return nil, nil, err
		}
		return sqldsl.IsNull{Expr: col}, vs, nil

	case Not:
		if !e.IsNot {
			return compileExpression(s, e.Inner, vs)
		}
		switch inner := e.Inner.(type) {
		case NullCheck:
			if inner.Op == IsNull {
				col, err := s.resolve(inner.Column)
				if err != nil {
					return nil, nil, err
				}
				return sqldsl.IsNotNull{Expr: col}, vs, nil
			}
		case Comparison:
			if inner.Op == Like {
				return compileComparison(s, inner, sqldsl.OpNotLike, vs)
			}
		}
		inner, vs, err := compileExpression(s, e.Inner, vs)
		if err != nil {
			return nil, nil, err
		}
		return sqldsl.Not{Expr: inner}, vs, nil

	default:
		return nil, nil, fmt.Errorf("%w: %#v", ErrUnrecognizedExpression, e)
	}
}

func compileComparison(s scope, c Comparison, token string, vs Values) (sqldsl.Expr, Values, error) {
	col, err := s.resolve(c.Column)
	if err != nil {
		return nil, nil, err
	}
	var rhs sqldsl.Expr
	if other, ok := c.Value.(*Column); ok {
		rhs, err = s.resolve(other)
		if err != nil {
			return nil, nil, err
		}
	} else {
		rhs, vs = vs.bind(c.Value)
	}
	return sqldsl.Compare{Left: col, Op: token, Right: rhs}, vs, nil
}

// compilePredicates folds the predicates with AND and compiles the result.
// It returns a nil expression when there are no predicates.
func compilePredicates(s scope, predicates []Expression, vs Values) (sqldsl.Expr, Values, error) {
	root := AllOf(predicates...)
	if root == nil {
		return nil, vs, nil
	}
	return compileExpression(s, root, vs)
}

// CompileExpression compiles a standalone expression against the given
// tables. It is the building block used by every statement builder and is
// exposed for composing fragments into hand-written SQL.
func CompileExpression(e Expression, tables ...*Table) (CompiledQuery, error) {
	expr, vs, err := compileExpression(scope(tables), e, nil)
	if err != nil {
		return CompiledQuery{}, err
	}
	return CompiledQuery{Text: expr.SQL(), Values: vs}, nil
}
