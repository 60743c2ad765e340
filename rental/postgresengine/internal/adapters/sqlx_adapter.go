package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// NewSQLXAdapter creates a DBAdapter for a sqlx handle. Transactions are started with BeginTxx.
func NewSQLXAdapter(db *sqlx.DB) *StdAdapter {
	return &StdAdapter{
		stdQuerier: stdQuerier{runner: db},
		begin: func(ctx context.Context, opts *sql.TxOptions) (stdTx, error) {
			return db.BeginTxx(ctx, opts)
		},
	}
}
