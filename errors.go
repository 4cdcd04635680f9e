package typedsql

import "errors"

// Sentinel errors for compilation failures. They describe a malformed builder
// or expression and are returned before any SQL text reaches a database.
//
// Use the Is*Err helper functions to test for them; returned errors wrap the
// sentinel with the offending node or column for context.
var (
	// ErrUnknownOperator is returned when a comparison, null check or composed
	// expression carries an operator outside its enumeration.
	ErrUnknownOperator = errors.New("typedsql: unknown operator")

	// ErrUnrecognizedExpression is returned when the compiler meets a node that
	// is none of the expression variants, including a nil expression.
	ErrUnrecognizedExpression = errors.New("typedsql: unrecognized expression")

	// ErrColumnNotFound is returned when an expression references a column that
	// is not owned by any table in scope of the compiling statement, or when an
	// insert or update row names a key the table does not declare.
	ErrColumnNotFound = errors.New("typedsql: column not found")

	// ErrNoColumnsSet is returned by Update.Compile when Set was never called.
	ErrNoColumnsSet = errors.New("typedsql: no columns were set")

	// ErrUnknownColumnType is returned during DDL generation for a column whose
	// declared type has no default database type.
	ErrUnknownColumnType = errors.New("typedsql: unknown column type")

	// ErrNoRows is returned by Insert.Compile when no rows were supplied.
	ErrNoRows = errors.New("typedsql: no rows to insert")

	// ErrJoinedQuery is returned by Query.Execute on a query with joins.
	// Use ExecuteJoined to receive one row per table.
	ErrJoinedQuery = errors.New("typedsql: query has joins")
)

// IsUnknownOperatorErr returns true if err is or wraps ErrUnknownOperator.
func IsUnknownOperatorErr(err error) bool {
	return errors.Is(err, ErrUnknownOperator)
}

// IsUnrecognizedExpressionErr returns true if err is or wraps ErrUnrecognizedExpression.
func IsUnrecognizedExpressionErr(err error) bool {
	return errors.Is(err, ErrUnrecognizedExpression)
}

// IsColumnNotFoundErr returns true if err is or wraps ErrColumnNotFound.
func IsColumnNotFoundErr(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}

// IsNoColumnsSetErr returns true if err is or wraps ErrNoColumnsSet.
func IsNoColumnsSetErr(err error) bool {
	return errors.Is(err, ErrNoColumnsSet)
}

// IsUnknownColumnTypeErr returns true if err is or wraps ErrUnknownColumnType.
func IsUnknownColumnTypeErr(err error) bool {
	return errors.Is(err, ErrUnknownColumnType)
}
