package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/internal/adapters"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/migrations"
)

const createSchemaMigrationsTable = `CREATE TABLE IF NOT EXISTS rental_schema_migrations (
    version    text        PRIMARY KEY,
    applied_at timestamptz NOT NULL
)`

// Migrate applies the embedded schema migrations that are not recorded yet.
// It holds a transaction-scoped advisory lock, so concurrent starts of several processes are safe.
func (e Engine) Migrate(ctx context.Context) (err error) {
	observer, ctx := e.observe(ctx, operationMigrate, nil)
	defer func() { observer.finish(err, nil) }()

	all, loadErr := migrations.All()
	if loadErr != nil {
		return errors.Join(rental.ErrWritingFailed, loadErr)
	}

	return e.withTx(ctx, func(s *txScope) error {
		if _, lockErr := e.exec(ctx, s.tx, fmt.Sprintf("SELECT pg_advisory_xact_lock(%d)", migrationsLockKey), "migrations lock"); lockErr != nil {
			return lockErr
		}

		if _, createErr := e.exec(ctx, s.tx, createSchemaMigrationsTable, "migrations table"); createErr != nil {
			return createErr
		}

		applied, appliedErr := e.appliedMigrations(ctx, s)
		if appliedErr != nil {
			return appliedErr
		}

		for _, migration := range all {
			if applied[migration.Version] {
				continue
			}

			if _, execErr := e.exec(ctx, s.tx, migration.SQL, "migration "+migration.Version); execErr != nil {
				return execErr
			}

			insertStmt := goqu.Dialect(dialectPostgres).
				Insert(tableSchemaMigrations).
				Rows(goqu.Record{colVersion: migration.Version, colAppliedAt: e.now()})

			sqlQuery, buildErr := e.toSQL(ctx, insertStmt)
			if buildErr != nil {
				return buildErr
			}

			if _, execErr := e.exec(ctx, s.tx, sqlQuery, "record migration"); execErr != nil {
				return execErr
			}

			e.logOperation(ctx, logMsgMigrationApplied, logAttrVersion, migration.Version)
		}

		return nil
	})
}

func (e Engine) appliedMigrations(ctx context.Context, s *txScope) (map[string]bool, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableSchemaMigrations).
		Select(colVersion)

	sqlQuery, buildErr := e.toSQL(ctx, selectStmt)
	if buildErr != nil {
		return nil, buildErr
	}

	rows, queryErr := e.query(ctx, s.tx, sqlQuery, "applied migrations")
	if queryErr != nil {
		return nil, queryErr
	}

	applied := make(map[string]bool)

	scanErr := e.scanAll(ctx, rows, func(rows adapters.DBRows) error {
		var version string
		if err := rows.Scan(&version); err != nil {
			return err
		}

		applied[version] = true

		return nil
	})

	return applied, scanErr
}
