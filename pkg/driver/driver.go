// Package driver executes compiled typedsql statements against PostgreSQL.
//
// Pool wraps a pgx connection pool and Tx a pgx transaction; both implement
// typedsql.Querier. DB adapts a database/sql handle for applications that
// already manage one, such as the typedsql CLI which uses lib/pq.
//
//	pool, err := driver.Open(ctx, dsn, driver.WithEcho(log.Logger))
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	err = pool.Transaction(ctx, func(tx *driver.Tx) error {
//	    _, err := users.Insert().Values(typedsql.Row{"name": "Josh"}).Execute(ctx, tx)
//	    return err
//	})
package driver

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/pthm/typedsql"
)

// Option configures a Pool or DB.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	echo     bool
	maxConns int32
}

func newOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithEcho logs every executed statement and its bound values at debug level.
func WithEcho(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
		o.echo = true
	}
}

// WithMaxConns caps the pool size. Zero keeps the pgxpool default.
func WithMaxConns(n int32) Option {
	return func(o *options) {
		o.maxConns = n
	}
}

func (o options) logStatement(q typedsql.CompiledQuery) {
	if !o.echo {
		return
	}
	o.logger.Debug().Str("sql", q.Text).Interface("args", q.Values).Msg("executing statement")
}

// pgxQuerier is implemented by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryPgx(ctx context.Context, db pgxQuerier, o options, q typedsql.CompiledQuery) ([]typedsql.Row, error) {
	o.logStatement(q)
	rows, err := db.Query(ctx, q.Text, q.Values...)
	if err != nil {
		return nil, mapError("query", err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapError("reading rows", err)
	}
	out := make([]typedsql.Row, len(maps))
	for i, m := range maps {
		out[i] = m
	}
	return out, nil
}

// Pool is a pgx connection pool that executes compiled statements.
type Pool struct {
	pool *pgxpool.Pool
	opts options
}

var _ typedsql.Querier = (*Pool)(nil)

// Open connects a pool to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string, opts ...Option) (*Pool, error) {
	o := newOptions(opts)

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	if o.maxConns > 0 {
		cfg.MaxConns = o.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &Pool{pool: pool, opts: o}, nil
}

// Query executes a compiled statement and returns its rows.
func (p *Pool) Query(ctx context.Context, q typedsql.CompiledQuery) ([]typedsql.Row, error) {
	return queryPgx(ctx, p.pool, p.opts, q)
}

// Ping verifies a connection can be acquired.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes all connections in the pool.
func (p *Pool) Close() {
	p.pool.Close()
}
