package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/internal/adapters"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
	sqlStateCheckViolation       = "23514"
)

// txScope is one unit of work. Audit entries written inside it are published after commit.
type txScope struct {
	tx      adapters.DBTx
	pending rental.AuditEntries
}

// withTx runs fn in a transaction and commits when fn returns nil.
// Storage errors are classified so retryable conflicts surface as rental.ErrTransient.
func (e Engine) withTx(ctx context.Context, fn func(s *txScope) error) error {
	tx, beginErr := e.db.BeginTx(ctx)
	if beginErr != nil {
		e.logError(ctx, logMsgBeginTxFailed, beginErr)
		return classifyStorageError(errors.Join(rental.ErrWritingFailed, beginErr))
	}

	scope := &txScope{tx: tx}

	if fnErr := fn(scope); fnErr != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			e.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
		}

		return classifyStorageError(fnErr)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		e.logError(ctx, logMsgCommitFailed, commitErr)
		return classifyStorageError(errors.Join(rental.ErrWritingFailed, commitErr))
	}

	e.publishAuditEntries(ctx, scope.pending)

	return nil
}

// classifyStorageError maps PostgreSQL error codes of both drivers to the rental sentinels.
func classifyStorageError(err error) error {
	var code string

	var pgErr *pgconn.PgError
	var pqErr *pq.Error

	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Code
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	default:
		return err
	}

	switch code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return errors.Join(rental.ErrTransient, err)
	case sqlStateUniqueViolation:
		return errors.Join(rental.ErrDuplicateHold, err)
	case sqlStateCheckViolation:
		return errors.Join(rental.ErrLedgerInvariant, err)
	default:
		return err
	}
}

// query executes a select on q and logs it with its duration.
func (e Engine) query(ctx context.Context, q adapters.Querier, sqlQuery sqlQueryString, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := q.Query(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		e.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(rental.ErrQueryingFailed, queryErr)
	}

	return rows, nil
}

// exec executes a statement on q, logs it and returns the affected row count.
func (e Engine) exec(ctx context.Context, q adapters.Querier, sqlQuery sqlQueryString, action string) (int64, error) {
	start := time.Now()
	result, execErr := q.Exec(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		e.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(rental.ErrWritingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, errors.Join(rental.ErrWritingFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (e Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// scanAll iterates rows, calling scan for each one, and closes them.
func (e Engine) scanAll(ctx context.Context, rows adapters.DBRows, scan func(rows adapters.DBRows) error) error {
	defer e.closeRows(ctx, rows)

	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			e.logError(ctx, logMsgScanRowFailed, scanErr)
			return errors.Join(rental.ErrScanningFailed, scanErr)
		}
	}

	if iterErr := rows.Err(); iterErr != nil {
		return errors.Join(rental.ErrQueryingFailed, iterErr)
	}

	return nil
}

// toSQL renders a goqu dataset and wraps build failures.
func (e Engine) toSQL(ctx context.Context, ds interface {
	ToSQL() (string, []any, error)
}) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := ds.ToSQL()
	if toSQLErr != nil {
		e.logError(ctx, logMsgBuildQueryFailed, toSQLErr)
		return "", errors.Join(rental.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// publishAuditEntries hands committed audit entries to the publisher, best effort.
func (e Engine) publishAuditEntries(ctx context.Context, entries rental.AuditEntries) {
	if e.auditPublisher == nil {
		return
	}

	for _, entry := range entries {
		if err := e.auditPublisher.PublishAuditEntry(ctx, entry); err != nil {
			e.logWarn(ctx, logMsgAuditPublishFailed,
				logAttrError, err.Error(),
				logAttrItemID, entry.ItemID,
				logAttrEventType, string(entry.EventType),
			)
		}
	}
}
