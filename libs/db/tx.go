package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Beginner is satisfied by *Pool, *pgxpool.Pool, *pgx.Conn and pgxmock pools.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx runs fn inside a transaction bounded by timeout. fn's error, a timeout or a
// failed commit roll the whole transaction back.
func InTx(ctx context.Context, b Beginner, timeout time.Duration, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AdvisoryXactLock takes transaction-scoped advisory locks for the given keys. Keys are
// locked in sorted order so two transactions asking for the same set cannot deadlock.
func AdvisoryXactLock(ctx context.Context, tx pgx.Tx, keys ...string) error {
	uniq := make([]string, 0, len(keys))
	seen := map[string]struct{}{}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)

	for _, k := range uniq {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, k); err != nil {
			return fmt.Errorf("advisory lock %q: %w", k, err)
		}
	}
	return nil
}

// Querier is the read/write surface shared by pgx.Tx, *pgxpool.Pool and pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner runs fn inside a single transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// Runner binds a Beginner and a timeout into a TxRunner.
type Runner struct {
	DB      Beginner
	Timeout time.Duration
}

func (r Runner) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return InTx(ctx, r.DB, r.Timeout, fn)
}
