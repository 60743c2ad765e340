package adapters

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type stdTxStub struct {
	stdRunner
	rollbackErr error
	committed   bool
}

func (s *stdTxStub) Commit() error {
	s.committed = true
	return nil
}

func (s *stdTxStub) Rollback() error {
	return s.rollbackErr
}

func Test_stdTxScope_Rollback(t *testing.T) {
	ctx := context.Background()
	broken := errors.New("connection lost")

	testCases := []struct {
		name        string
		rollbackErr error
		expected    error
	}{
		{name: "open transaction", rollbackErr: nil, expected: nil},
		{name: "after commit", rollbackErr: sql.ErrTxDone, expected: nil},
		{name: "driver failure", rollbackErr: broken, expected: broken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scope := &stdTxScope{tx: &stdTxStub{rollbackErr: tc.rollbackErr}}

			err := scope.Rollback(ctx)

			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expected)
			}
		})
	}
}

func Test_stdTxScope_Commit(t *testing.T) {
	stub := &stdTxStub{}
	scope := &stdTxScope{tx: stub}

	assert.NoError(t, scope.Commit(context.Background()))
	assert.True(t, stub.committed)
}

func Test_pgxResult_RowsAffected(t *testing.T) {
	result := pgxResult(pgconn.NewCommandTag("UPDATE 3"))

	affected, err := result.RowsAffected()

	assert.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}
