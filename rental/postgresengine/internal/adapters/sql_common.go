package adapters

import (
	"context"
	"database/sql"
	"errors"
)

// *sql.Rows and sql.Result satisfy DBRows and DBResult as they are.
var (
	_ DBRows   = (*sql.Rows)(nil)
	_ DBResult = sql.Result(nil)
)

// stdRunner is what *sql.DB, *sqlx.DB, *sql.Tx and *sqlx.Tx have in common.
type stdRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type stdQuerier struct {
	runner stdRunner
}

func (q stdQuerier) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := q.runner.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (q stdQuerier) Exec(ctx context.Context, query string) (DBResult, error) {
	return q.runner.ExecContext(ctx, query)
}

// StdAdapter implements DBAdapter on top of database/sql, used for both sql.DB and sqlx.DB.
type StdAdapter struct {
	stdQuerier
	begin func(ctx context.Context, opts *sql.TxOptions) (stdTx, error)
}

// txOptions is the isolation every engine transaction runs with.
// The guarded counter updates rely on row locks, not on serializable snapshots.
var txOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

// BeginTx starts a read committed transaction.
func (a *StdAdapter) BeginTx(ctx context.Context) (DBTx, error) {
	tx, err := a.begin(ctx, txOptions)
	if err != nil {
		return nil, err
	}

	return &stdTxScope{stdQuerier: stdQuerier{runner: tx}, tx: tx}, nil
}

type stdTx interface {
	stdRunner
	Commit() error
	Rollback() error
}

type stdTxScope struct {
	stdQuerier
	tx stdTx
}

func (s *stdTxScope) Commit(_ context.Context) error {
	return s.tx.Commit()
}

// Rollback ignores sql.ErrTxDone, so it is safe after Commit.
func (s *stdTxScope) Rollback(_ context.Context) error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}
