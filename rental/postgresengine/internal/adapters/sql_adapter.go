package adapters

import (
	"context"
	"database/sql"
)

// NewSQLAdapter creates a DBAdapter for a database/sql handle opened with the lib/pq driver.
func NewSQLAdapter(db *sql.DB) *StdAdapter {
	return &StdAdapter{
		stdQuerier: stdQuerier{runner: db},
		begin: func(ctx context.Context, opts *sql.TxOptions) (stdTx, error) {
			return db.BeginTx(ctx, opts)
		},
	}
}
