package postgresengine

import (
	"database/sql"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/internal/adapters"
)

const (
	dialectPostgres        = "postgres"
	tableCatalogItems      = "catalog_items"
	tableHolds             = "holds"
	tableAuditLog          = "audit_log"
	tableSchemaMigrations  = "rental_schema_migrations"
	colID                  = "id"
	colName                = "name"
	colQuantity            = "quantity"
	colAvailableCount      = "available_count"
	colManualStatus        = "manual_status"
	colUpdatedAt           = "updated_at"
	colItemID              = "item_id"
	colKind                = "kind"
	colUserID              = "user_id"
	colGuestName           = "guest_name"
	colHolderKey           = "holder_key"
	colCreatedAt           = "created_at"
	colDeadline            = "deadline"
	colConvertedAt         = "converted_at"
	colClosedAt            = "closed_at"
	colCloseReason         = "close_reason"
	colHoldID              = "hold_id"
	colEventType           = "event_type"
	colActor               = "actor"
	colOccurredAt          = "occurred_at"
	colDetail              = "detail"
	colMetadata            = "metadata"
	colVersion             = "version"
	colAppliedAt           = "applied_at"
	castJsonb              = "?::jsonb"
	exprDecrementAvailable = "available_count - 1"
	exprIncrementAvailable = "available_count + 1"
	migrationsLockKey      = 727100
)

const (
	logMsgBuildQueryFailed   = "failed to build sql query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgBeginTxFailed      = "failed to begin transaction"
	logMsgCommitFailed       = "failed to commit transaction"
	logMsgRollbackFailed     = "failed to roll back transaction"
	logMsgDemandSignalFailed = "failed to record demand signal"
	logMsgAuditPublishFailed = "failed to publish audit entry"
	logMsgReconciliationGap  = "reconciliation gap: no copy available and no open hold explains it"
	logMsgOverdueReclaimed   = "overdue reservations reclaimed"
	logMsgOperationFailed    = "operation failed"
	logMsgOperationRejected  = "operation rejected"
	logMsgMigrationApplied   = "schema migration applied"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "rental operation: "
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrDurationMS        = "duration_ms"
	logAttrItemID            = "item_id"
	logAttrHoldID            = "hold_id"
	logAttrHoldKind          = "hold_kind"
	logAttrHolder            = "holder"
	logAttrActor             = "actor"
	logAttrEventType         = "event_type"
	logAttrCount             = "count"
	logAttrAvailableCount    = "available_count"
	logAttrQuantity          = "quantity"
	logAttrVersion           = "version"
	logAttrReason            = "reason"
)

type sqlQueryString = string

// Engine is the PostgreSQL implementation of the rental state engine.
// Every mutating operation runs as one transaction: ledger change, hold write and audit append
// commit together or not at all.
type Engine struct {
	db               adapters.DBAdapter
	clock            rental.Clock
	policy           rental.HoldPolicy
	logger           rental.Logger
	contextualLogger rental.ContextualLogger
	metricsCollector rental.MetricsCollector
	tracingCollector rental.TracingCollector
	auditPublisher   rental.AuditPublisher
}

// NewEngineFromPGXPool creates a new Engine using a pgx Pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, rental.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromPGXPoolAndReplica creates a new Engine that sends read-only queries outside of
// transactions (audit log listing, holder holds) to a replica pool.
func NewEngineFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Engine, error) {
	if db == nil || replica == nil {
		return Engine{}, rental.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, rental.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (Engine, error) {
	if db == nil {
		return Engine{}, rental.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (Engine, error) {
	e := Engine{
		db:     db,
		clock:  rental.SystemClock(),
		policy: rental.DefaultHoldPolicy(),
	}

	for _, option := range options {
		if err := option(&e); err != nil {
			return Engine{}, err
		}
	}

	return e, nil
}

// Policy returns the hold policy the engine applies.
func (e Engine) Policy() rental.HoldPolicy {
	return e.policy
}

// now returns the engine clock truncated to microseconds, the resolution of timestamptz.
func (e Engine) now() time.Time {
	return e.clock.Now().UTC().Truncate(time.Microsecond)
}

var _ rental.Engine = Engine{}
