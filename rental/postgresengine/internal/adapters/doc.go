// Package adapters provide database adapter implementations for the PostgreSQL rental engine.
//
// The engine works against pgx.Pool, sql.DB and sqlx.DB through the common DBAdapter interface.
// Every adapter can open a transaction (DBTx) which offers the same query and exec methods,
// so the engine can run each rental operation as one unit of work regardless of the driver.
package adapters
