package pgtesthelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell/config"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine"
)

// Environment variables read by CreateWrapperWithTestConfig.
const (
	AdapterTypeEnv    = "ADAPTER_TYPE"
	TestPrimaryDSNEnv = "TEST_PRIMARY_DSN"
	TestReplicaDSNEnv = "TEST_REPLICA_DSN"
)

const cleanUpStatement = "TRUNCATE TABLE audit_log, holds, catalog_items"

// Wrapper hides which driver an engine under test runs on.
type Wrapper interface {
	GetEngine() postgresengine.Engine
	Exec(ctx context.Context, statement string) error
	AdapterType() string
	Close()
}

// PGXPoolWrapper wraps a pgx pool, optionally with a replica pool.
type PGXPoolWrapper struct {
	pool    *pgxpool.Pool
	replica *pgxpool.Pool
	engine  postgresengine.Engine
}

func (w *PGXPoolWrapper) GetEngine() postgresengine.Engine {
	return w.engine
}

func (w *PGXPoolWrapper) AdapterType() string {
	return config.AdapterPGX
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.pool.Exec(ctx, statement)
	return err
}

func (w *PGXPoolWrapper) Close() {
	if w.replica != nil {
		w.replica.Close()
	}

	w.pool.Close()
}

// SQLDBWrapper wraps a database/sql handle.
type SQLDBWrapper struct {
	db     *sql.DB
	engine postgresengine.Engine
}

func (w *SQLDBWrapper) GetEngine() postgresengine.Engine {
	return w.engine
}

func (w *SQLDBWrapper) AdapterType() string {
	return config.AdapterSQLDB
}

func (w *SQLDBWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // nothing to do about it in a test teardown
}

// SQLXWrapper wraps a sqlx handle.
type SQLXWrapper struct {
	db     *sqlx.DB
	engine postgresengine.Engine
}

func (w *SQLXWrapper) GetEngine() postgresengine.Engine {
	return w.engine
}

func (w *SQLXWrapper) AdapterType() string {
	return config.AdapterSQLX
}

func (w *SQLXWrapper) Exec(ctx context.Context, statement string) error {
	_, err := w.db.ExecContext(ctx, statement)
	return err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // nothing to do about it in a test teardown
}

// TestDSN returns TEST_PRIMARY_DSN or the local development database.
func TestDSN() string {
	if dsn := os.Getenv(TestPrimaryDSNEnv); dsn != "" {
		return dsn
	}

	return config.PostgresLocalDSN()
}

// CreateWrapperWithTestConfig connects with the adapter from ADAPTER_TYPE, migrates the schema and
// empties all rental tables. The test is skipped when the database is unreachable.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	ctx := context.Background()
	adapterType := strings.ToLower(os.Getenv(AdapterTypeEnv))

	var wrapper Wrapper

	switch adapterType {
	case config.AdapterPGX, "":
		wrapper = createPGXPoolWrapper(ctx, t, options...)

	case config.AdapterSQLDB:
		db, err := config.NewSQLDB(ctx, TestDSN())
		if err != nil {
			t.Skipf("postgres not reachable: %v", err)
		}

		engine, err := postgresengine.NewEngineFromSQLDB(db, options...)
		require.NoError(t, err, "error creating the engine")

		wrapper = &SQLDBWrapper{db: db, engine: engine}

	case config.AdapterSQLX:
		db, err := config.NewSQLX(ctx, TestDSN())
		if err != nil {
			t.Skipf("postgres not reachable: %v", err)
		}

		engine, err := postgresengine.NewEngineFromSQLX(db, options...)
		require.NoError(t, err, "error creating the engine")

		wrapper = &SQLXWrapper{db: db, engine: engine}

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.GetEngine().Migrate(ctx), "error migrating the schema")
	CleanUp(t, wrapper)

	return wrapper
}

func createPGXPoolWrapper(ctx context.Context, t testing.TB, options ...postgresengine.Option) Wrapper {
	pool, err := config.NewPGXPool(ctx, TestDSN())
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}

	replicaDSN := os.Getenv(TestReplicaDSNEnv)
	if replicaDSN == "" {
		engine, engineErr := postgresengine.NewEngineFromPGXPool(pool, options...)
		require.NoError(t, engineErr, "error creating the engine")

		return &PGXPoolWrapper{pool: pool, engine: engine}
	}

	replica, err := config.NewPGXPool(ctx, replicaDSN)
	require.NoError(t, err, "error connecting to the replica")

	engine, err := postgresengine.NewEngineFromPGXPoolAndReplica(pool, replica, options...)
	require.NoError(t, err, "error creating the engine")

	return &PGXPoolWrapper{pool: pool, replica: replica, engine: engine}
}

// CleanUp empties all rental tables.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	require.NoError(t, wrapper.Exec(context.Background(), cleanUpStatement), "error cleaning up the rental tables")
}
