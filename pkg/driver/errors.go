package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Sentinel errors for common statement failures. Query errors carrying one of
// the matching SQLSTATE codes wrap these so callers can use errors.Is without
// depending on a particular PostgreSQL driver.
var (
	// ErrUndefinedTable is returned when a statement references a missing table.
	// Run `typedsql migrate` to create declared tables.
	ErrUndefinedTable = errors.New("driver: table does not exist")

	// ErrUndefinedColumn is returned when a statement references a missing
	// column. The table was usually declared with more columns than were
	// migrated.
	ErrUndefinedColumn = errors.New("driver: column does not exist")

	// ErrUniqueViolation is returned when an insert or update violates a
	// unique constraint.
	ErrUniqueViolation = errors.New("driver: unique constraint violated")

	// ErrRollback can be returned from a transaction function to roll the
	// transaction back without reporting an error.
	ErrRollback = errors.New("driver: rollback")
)

// PostgreSQL error codes for error mapping.
const (
	pgUndefinedTable   = "42P01" // undefined_table
	pgUndefinedColumn  = "42703" // undefined_column
	pgUniqueViolation  = "23505" // unique_violation
	sqlStateCodeLength = 5
)

// mapError maps PostgreSQL errors to sentinel errors, keeping the original
// error in the chain.
func mapError(operation string, err error) error {
	switch sqlState(err) {
	case pgUndefinedTable:
		return fmt.Errorf("%s: %w: %w", operation, ErrUndefinedTable, err)
	case pgUndefinedColumn:
		return fmt.Errorf("%s: %w: %w", operation, ErrUndefinedColumn, err)
	case pgUniqueViolation:
		return fmt.Errorf("%s: %w: %w", operation, ErrUniqueViolation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// sqlState extracts the SQLSTATE code from a PostgreSQL error.
// Works with pgx (*pgconn.PgError) and lib/pq (*pq.Error), falling back to
// the "(SQLSTATE xxxxx)" suffix pgx appends to its messages.
//
// Returns empty string if the error doesn't contain a SQLSTATE.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	errStr := err.Error()
	for _, prefix := range []string{"SQLSTATE ", "SQLSTATE: "} {
		if idx := strings.Index(errStr, prefix); idx >= 0 {
			start := idx + len(prefix)
			if start+sqlStateCodeLength <= len(errStr) {
				return errStr[start : start+sqlStateCodeLength]
			}
		}
	}
	return ""
}

// IsUndefinedTableErr returns true if err is or wraps ErrUndefinedTable.
func IsUndefinedTableErr(err error) bool {
	return errors.Is(err, ErrUndefinedTable)
}

// IsUndefinedColumnErr returns true if err is or wraps ErrUndefinedColumn.
func IsUndefinedColumnErr(err error) bool {
	return errors.Is(err, ErrUndefinedColumn)
}

// IsUniqueViolationErr returns true if err is or wraps ErrUniqueViolation.
func IsUniqueViolationErr(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}
