package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
)

const postgresDriver = "postgres"

// NewSQLDB opens a lib/pq backed *sql.DB with the shared pool limits and pings it.
func NewSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", postgresDriver, err)
	}

	db.SetMaxOpenConns(int(poolMaxConns))
	db.SetMaxIdleConns(int(poolMinConns) * 2)
	db.SetConnMaxLifetime(poolMaxConnLifetime)
	db.SetConnMaxIdleTime(poolMaxConnIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// NewSQLX is NewSQLDB with the handle wrapped for sqlx.
func NewSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := NewSQLDB(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return sqlx.NewDb(db, postgresDriver), nil
}
