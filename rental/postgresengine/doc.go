// Package postgresengine provides the PostgreSQL implementation of the rental state engine.
//
// The engine keeps the inventory ledger, the holds and the audit log in three tables and runs
// every rental operation as one transaction. It supports multiple database adapters (pgx, sql.DB, sqlx)
// behind one internal interface.
//
// Key features:
//   - Guarded single-statement ledger updates, so no copy is ever handed out twice
//   - One open hold per holder and item, enforced by a lock-protected check and a partial unique index
//   - Lazy reclaim of overdue reservations whenever an item is touched, plus ExpireDue for a sweeper
//   - Append-only audit log, optionally forwarded to an AuditPublisher after commit
//   - Optional logging, contextual logging, metrics and tracing through the interfaces of package rental
//   - Embedded schema migrations (Migrate)
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	engine, _ := postgresengine.NewEngineFromPGXPool(db, postgresengine.WithLogger(slog.Default()))
//	_ = engine.Migrate(ctx)
//
//	_, _ = engine.RegisterItem(ctx, "catan", "Catan", 3)
//	hold, err := engine.Reserve(ctx, "catan", rental.UserHolder(userID))
//	if errors.Is(err, rental.ErrOutOfStock) {
//		// nothing to hand out right now
//	}
//
//	loan, _ := engine.ConvertToLoan(ctx, hold.ID, "staff:kim")
//	_, _ = engine.Return(ctx, loan.ID, "staff:kim")
package postgresengine
