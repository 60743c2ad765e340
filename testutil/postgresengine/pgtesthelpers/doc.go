// Package pgtesthelpers runs rental engine tests against a real PostgreSQL with any of the three adapters.
//
// The adapter is picked by the ADAPTER_TYPE environment variable:
//
//	pgx.pool (default), sql.db, sqlx.db
//
// TEST_PRIMARY_DSN points at the test database, TEST_REPLICA_DSN optionally at a replica (pgx.pool only).
// Tests are skipped when the database cannot be reached, so `go test ./...` works without Docker.
package pgtesthelpers
