package typedsql_test

import (
	"context"

	"github.com/pthm/typedsql"
)

var (
	users = typedsql.MustNewTable("users",
		typedsql.PrimaryKeyColumn("id"),
		typedsql.StringColumn("name"),
	)
	articles = typedsql.MustNewTable("articles",
		typedsql.PrimaryKeyColumn("id"),
		typedsql.StringColumn("title"),
		typedsql.NumberColumn("userId"),
	)
	comments = typedsql.MustNewTable("comments",
		typedsql.PrimaryKeyColumn("id"),
		typedsql.StringColumn("body").Nullable(),
		typedsql.NumberColumn("articleId"),
	)
)

// fakeQuerier records compiled statements and returns canned rows.
type fakeQuerier struct {
	rows []typedsql.Row
	err  error
	got  []typedsql.CompiledQuery
}

func (f *fakeQuerier) Query(_ context.Context, q typedsql.CompiledQuery) ([]typedsql.Row, error) {
	f.got = append(f.got, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}
