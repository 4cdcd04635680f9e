package typedsql_test

import (
	"fmt"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/typedsql"
)

func TestCompileExpression(t *testing.T) {
	id, name := users.Column("id"), users.Column("name")

	tests := []struct {
		name       string
		expr       typedsql.Expression
		wantText   string
		wantValues []any
	}{
		{"equals", id.Eqls(1), `"users"."id" = $1`, []any{1}},
		{"like", name.Like("J%"), `"users"."name" LIKE $1`, []any{"J%"}},
		{"greater than", id.Gt(1), `"users"."id" > $1`, []any{1}},
		{"greater than or equal", id.Gte(1), `"users"."id" >= $1`, []any{1}},
		{"less than", id.Lt(1), `"users"."id" < $1`, []any{1}},
		{"less than or equal", id.Lte(1), `"users"."id" <= $1`, []any{1}},
		{"is null", name.IsNull(), `"users"."name" IS NULL`, nil},
		{"null literal", name.Eqls(nil), `"users"."name" = $1`, []any{nil}},
		{
			"and",
			typedsql.And(id.Eqls(1), name.Eqls("Josh")),
			`("users"."id" = $1) AND ("users"."name" = $2)`,
			[]any{1, "Josh"},
		},
		{
			"or",
			typedsql.Or(id.Eqls(1), name.Eqls("Josh")),
			`("users"."id" = $1) OR ("users"."name" = $2)`,
			[]any{1, "Josh"},
		},
		{"not null", typedsql.Negate(name.IsNull()), `"users"."name" IS NOT NULL`, nil},
		{"not like", typedsql.Negate(name.Like("J%")), `"users"."name" NOT LIKE $1`, []any{"J%"}},
		{"generic not", typedsql.Negate(id.Eqls(1)), `NOT ("users"."id" = $1)`, []any{1}},
		{
			"not composed",
			typedsql.Negate(typedsql.Or(id.Eqls(1), name.IsNull())),
			`NOT (("users"."id" = $1) OR ("users"."name" IS NULL))`,
			[]any{1},
		},
		{
			"nested left to right",
			typedsql.Or(typedsql.And(id.Gt(1), id.Lt(9)), typedsql.Negate(name.Like("%x"))),
			`(("users"."id" > $1) AND ("users"."id" < $2)) OR ("users"."name" NOT LIKE $3)`,
			[]any{1, 9, "%x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := typedsql.CompileExpression(tt.expr, users)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
			if tt.wantValues == nil {
				assert.Empty(t, got.Values)
			} else {
				assert.Equal(t, tt.wantValues, got.Values)
			}
		})
	}
}

func TestCompileExpressionColumnToColumn(t *testing.T) {
	userID := articles.Column("userId")
	id := users.Column("id")

	got, err := typedsql.CompileExpression(userID.Eqls(id), articles, users)
	require.NoError(t, err)
	assert.Equal(t, `"articles"."userid" = "users"."id"`, got.Text)
	assert.Empty(t, got.Values)

	got, err = typedsql.CompileExpression(typedsql.Negate(articles.Column("title").Like(users.Column("name"))), articles, users)
	require.NoError(t, err)
	assert.Equal(t, `"articles"."title" NOT LIKE "users"."name"`, got.Text)
	assert.Empty(t, got.Values)
}

func TestNegationInvolution(t *testing.T) {
	id, name := users.Column("id"), users.Column("name")
	exprs := []typedsql.Expression{
		id.Eqls(1),
		name.IsNull(),
		name.Like("J%"),
		typedsql.And(id.Gt(1), name.IsNull()),
		typedsql.Negate(id.Eqls(3)),
	}

	for i, e := range exprs {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			want, err := typedsql.CompileExpression(e, users)
			require.NoError(t, err)
			got, err := typedsql.CompileExpression(typedsql.Negate(typedsql.Negate(e)), users)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestNegateTogglesInsteadOfWrapping(t *testing.T) {
	e := users.Column("id").Eqls(1)

	once := typedsql.Negate(e)
	assert.Equal(t, typedsql.Not{IsNot: true, Inner: e}, once)

	twice := typedsql.Negate(once)
	assert.Equal(t, typedsql.Not{IsNot: false, Inner: e}, twice)

	thrice := typedsql.Negate(twice)
	assert.Equal(t, typedsql.Not{IsNot: true, Inner: e}, thrice)
}

func TestPlaceholderMonotonicity(t *testing.T) {
	id := users.Column("id")
	var e typedsql.Expression = id.Eqls(0)
	for i := 1; i < 12; i++ {
		if i%2 == 0 {
			e = typedsql.And(e, id.Gt(i))
		} else {
			e = typedsql.Or(id.Lt(i), e)
		}
	}

	got, err := typedsql.CompileExpression(e, users)
	require.NoError(t, err)
	require.Len(t, got.Values, 12)

	matches := regexp.MustCompile(`\$(\d+)`).FindAllStringSubmatch(got.Text, -1)
	require.Len(t, matches, 12)
	for i, m := range matches {
		assert.Equal(t, strconv.Itoa(i+1), m[1], "placeholder %d out of order in %s", i, got.Text)
	}
}

func TestCompileExpressionErrors(t *testing.T) {
	id := users.Column("id")
	impostor := typedsql.MustNewTable("users", typedsql.PrimaryKeyColumn("id"))

	tests := []struct {
		name    string
		expr    typedsql.Expression
		wantErr error
	}{
		{"unknown comparison operator", typedsql.Comparison{Column: id, Op: typedsql.ColumnOp(99), Value: 1}, typedsql.ErrUnknownOperator},
		{"unknown null check operator", typedsql.NullCheck{Column: id, Op: typedsql.Equals}, typedsql.ErrUnknownOperator},
		{"unknown composed operator", typedsql.Composed{Left: id.Eqls(1), Right: id.Eqls(2), Op: typedsql.ComposedOp(7)}, typedsql.ErrUnknownOperator},
		{"nil expression", nil, typedsql.ErrUnrecognizedExpression},
		{"nil inside composed", typedsql.And(id.Eqls(1), nil), typedsql.ErrUnrecognizedExpression},
		{"column of table not in scope", articles.Column("id").Eqls(1), typedsql.ErrColumnNotFound},
		{"column of same-named table", impostor.Column("id").Eqls(1), typedsql.ErrColumnNotFound},
		{"nil column", typedsql.Comparison{Op: typedsql.Equals, Value: 1}, typedsql.ErrColumnNotFound},
		{"right-hand column not in scope", id.Eqls(articles.Column("id")), typedsql.ErrColumnNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := typedsql.CompileExpression(tt.expr, users)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, got.Text)
		})
	}
}

func ExampleCompileExpression() {
	id, name := users.Column("id"), users.Column("name")
	q, _ := typedsql.CompileExpression(typedsql.And(id.Eqls(7), typedsql.Negate(name.IsNull())), users)
	fmt.Println(q.Text)
	fmt.Println(q.Values)
	// Output:
	// ("users"."id" = $1) AND ("users"."name" IS NOT NULL)
	// [7]
}
