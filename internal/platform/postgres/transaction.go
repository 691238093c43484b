package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTxTimeout = 15 * time.Second

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// TxFunc is executed within a transaction. Repositories called with ctx join it.
type TxFunc func(ctx context.Context) error

// TxOption customises transaction behaviour.
type TxOption func(*txConfig)

type txConfig struct {
	timeout time.Duration
	opts    pgx.TxOptions
}

// WithTxTimeout sets a timeout for the transaction context.
func WithTxTimeout(timeout time.Duration) TxOption {
	return func(cfg *txConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithReadOnly marks the transaction read only.
func WithReadOnly() TxOption {
	return func(cfg *txConfig) {
		cfg.opts.AccessMode = pgx.ReadOnly
	}
}

// RunTransaction executes fn in a transaction on pool. Nested calls reuse the outer transaction.
func RunTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc, opts ...TxOption) error {
	if pool == nil {
		return WrapError("transaction", errors.New("postgres: pool is nil"))
	}
	if fn == nil {
		return WrapError("transaction", errors.New("postgres: transaction function is nil"))
	}
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	cfg := txConfig{timeout: defaultTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	txnCtx := ctx
	var cancel context.CancelFunc
	if cfg.timeout > 0 {
		deadline, hasDeadline := ctx.Deadline()
		if !hasDeadline || time.Until(deadline) > cfg.timeout {
			txnCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		}
	}
	if cancel != nil {
		defer cancel()
	}

	tx, err := pool.BeginTx(txnCtx, cfg.opts)
	if err != nil {
		return WrapError("transaction.begin", err)
	}

	if err := fn(context.WithValue(txnCtx, txKey{}, tx)); err != nil {
		_ = tx.Rollback(context.WithoutCancel(txnCtx))
		return err
	}
	return WrapError("transaction.commit", tx.Commit(txnCtx))
}

// TxFromContext returns the transaction started by RunTransaction, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// Conn returns the transaction bound to ctx, or pool when none is active.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}
