package postgresengine

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

func Test_classifyStorageError(t *testing.T) {
	plain := errors.New("connection reset")

	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "pgx serialization failure", err: &pgconn.PgError{Code: "40001"}, expected: rental.ErrTransient},
		{name: "pgx deadlock", err: &pgconn.PgError{Code: "40P01"}, expected: rental.ErrTransient},
		{name: "pq deadlock", err: &pq.Error{Code: "40P01"}, expected: rental.ErrTransient},
		{name: "pgx unique violation", err: &pgconn.PgError{Code: "23505"}, expected: rental.ErrDuplicateHold},
		{name: "pq unique violation", err: &pq.Error{Code: "23505"}, expected: rental.ErrDuplicateHold},
		{name: "pgx check violation", err: &pgconn.PgError{Code: "23514"}, expected: rental.ErrLedgerInvariant},
		{name: "wrapped pq check violation", err: errors.Join(rental.ErrWritingFailed, &pq.Error{Code: "23514"}), expected: rental.ErrLedgerInvariant},
		{name: "unrelated error", err: plain, expected: plain},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyStorageError(tc.err), tc.expected)
		})
	}
}

func Test_classifyStorageError_KeepsOtherSQLStates(t *testing.T) {
	err := &pgconn.PgError{Code: "42P01"}

	classified := classifyStorageError(err)

	assert.Same(t, err, classified)
	assert.NotErrorIs(t, classified, rental.ErrTransient)
}

func Test_errorTypeFor_And_statusFor(t *testing.T) {
	testCases := []struct {
		err       error
		errorType string
		status    string
	}{
		{err: rental.ErrOutOfStock, errorType: "out_of_stock", status: statusConflict},
		{err: rental.ErrAlreadyClosed, errorType: "already_closed", status: statusConflict},
		{err: rental.ErrEmptyActor, errorType: "validation", status: statusConflict},
		{err: rental.ErrTransient, errorType: "transient", status: statusError},
		{err: errors.New("boom"), errorType: "database", status: statusError},
	}

	for _, tc := range testCases {
		t.Run(tc.errorType, func(t *testing.T) {
			assert.Equal(t, tc.errorType, errorTypeFor(tc.err))
			assert.Equal(t, tc.status, statusFor(tc.err))
		})
	}
}
