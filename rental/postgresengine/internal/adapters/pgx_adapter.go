package adapters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxRunner is what *pgxpool.Pool and pgx.Tx have in common.
type pgxRunner interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxQuerier struct {
	runner pgxRunner
}

func (q pgxQuerier) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := q.runner.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgxRows{Rows: rows}, nil
}

func (q pgxQuerier) Exec(ctx context.Context, query string) (DBResult, error) {
	tag, err := q.runner.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgxResult(tag), nil
}

// PGXAdapter implements DBAdapter for pgxpool.Pool.
// With a replica, plain queries outside of transactions go to the replica; writes and transactions stay on the primary.
type PGXAdapter struct {
	primary *pgxpool.Pool
	reads   pgxQuerier
}

// NewPGXAdapter creates a PGXAdapter on a single pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{primary: pool, reads: pgxQuerier{runner: pool}}
}

// NewPGXAdapterWithReplica creates a PGXAdapter that reads from replica.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{primary: pool, reads: pgxQuerier{runner: replica}}
}

func (p *PGXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return p.reads.Query(ctx, query)
}

func (p *PGXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return pgxQuerier{runner: p.primary}.Exec(ctx, query)
}

// BeginTx starts a read committed transaction on the primary.
func (p *PGXAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := p.primary.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}

	return &pgxTxScope{pgxQuerier: pgxQuerier{runner: tx}, tx: tx}, nil
}

type pgxTxScope struct {
	pgxQuerier
	tx pgx.Tx
}

func (s *pgxTxScope) Commit(ctx context.Context) error {
	return s.tx.Commit(ctx)
}

// Rollback ignores pgx.ErrTxClosed, so it is safe after Commit.
func (s *pgxTxScope) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

// pgxRows adapts pgx.Rows, whose Close returns nothing.
type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() error {
	r.Rows.Close()
	return nil
}

type pgxResult pgconn.CommandTag

func (r pgxResult) RowsAffected() (int64, error) {
	return pgconn.CommandTag(r).RowsAffected(), nil
}
