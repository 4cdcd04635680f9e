package typedsql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/typedsql"
)

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		target error
		is     func(error) bool
	}{
		{"IsUnknownOperatorErr", typedsql.ErrUnknownOperator, typedsql.IsUnknownOperatorErr},
		{"IsUnrecognizedExpressionErr", typedsql.ErrUnrecognizedExpression, typedsql.IsUnrecognizedExpressionErr},
		{"IsColumnNotFoundErr", typedsql.ErrColumnNotFound, typedsql.IsColumnNotFoundErr},
		{"IsNoColumnsSetErr", typedsql.ErrNoColumnsSet, typedsql.IsNoColumnsSetErr},
		{"IsUnknownColumnTypeErr", typedsql.ErrUnknownColumnType, typedsql.IsUnknownColumnTypeErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", tt.target)
			if !tt.is(err) {
				t.Errorf("%s should return true for wrapped %v", tt.name, tt.target)
			}
			if tt.is(errors.New("other error")) {
				t.Errorf("%s should return false for other errors", tt.name)
			}
		})
	}
}
