package driver

import (
	"context"
	"database/sql"

	"github.com/pthm/typedsql"
)

// SQLQuerier is implemented by *sql.DB, *sql.Tx and *sql.Conn.
type SQLQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DB adapts a database/sql handle to typedsql.Querier. Any driver that
// accepts $N placeholders works, such as lib/pq or pgx's stdlib driver.
type DB struct {
	db   SQLQuerier
	opts options
}

var _ typedsql.Querier = (*DB)(nil)

// NewDB wraps db. Passing a *sql.Tx runs statements inside that transaction.
func NewDB(db SQLQuerier, opts ...Option) *DB {
	return &DB{db: db, opts: newOptions(opts)}
}

// Query executes a compiled statement and returns its rows keyed by column
// name. []byte values are converted to strings since database/sql reuses
// its buffers.
func (d *DB) Query(ctx context.Context, q typedsql.CompiledQuery) ([]typedsql.Row, error) {
	d.opts.logStatement(q)
	rows, err := d.db.QueryContext(ctx, q.Text, q.Values...)
	if err != nil {
		return nil, mapError("query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, mapError("reading columns", err)
	}

	var out []typedsql.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, mapError("scanning row", err)
		}
		row := make(typedsql.Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				vals[i] = string(b)
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("reading rows", err)
	}
	return out, nil
}
