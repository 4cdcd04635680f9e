package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pthm/typedsql"
)

// Tx is a transaction, or a savepoint inside one when created by Nested.
type Tx struct {
	tx    pgx.Tx
	depth int
	opts  options
}

var _ typedsql.Querier = (*Tx)(nil)

// Query executes a compiled statement inside the transaction.
func (t *Tx) Query(ctx context.Context, q typedsql.CompiledQuery) ([]typedsql.Row, error) {
	return queryPgx(ctx, t.tx, t.opts, q)
}

// Depth is 0 for a top-level transaction and increases by one per Nested level.
func (t *Tx) Depth() int {
	return t.depth
}

// Transaction runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise. Returning ErrRollback rolls back and
// reports success.
func (p *Pool) Transaction(ctx context.Context, fn func(*Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return mapError("beginning transaction", err)
	}
	return run(ctx, &Tx{tx: tx, opts: p.opts}, fn)
}

// Nested runs fn inside a savepoint. The savepoint is released when fn
// returns nil and rolled back otherwise, leaving the enclosing transaction
// usable.
func (t *Tx) Nested(ctx context.Context, fn func(*Tx) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return mapError("creating savepoint", err)
	}
	return run(ctx, &Tx{tx: sp, depth: t.depth + 1, opts: t.opts}, fn)
}

func run(ctx context.Context, tx *Tx, fn func(*Tx) error) error {
	log := tx.opts.logger.With().Int("depth", tx.depth).Logger()

	defer func() {
		if p := recover(); p != nil {
			_ = tx.tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		log.Debug().Err(err).Msg("rolling back transaction")
		if rbErr := tx.tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		if errors.Is(err, ErrRollback) {
			return nil
		}
		return err
	}

	if err := tx.tx.Commit(ctx); err != nil {
		return mapError("committing transaction", err)
	}
	log.Debug().Msg("committed transaction")
	return nil
}
