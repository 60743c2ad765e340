// Package memengine is an in-memory implementation of the rental engine.
//
// It offers the same operations and error semantics as postgresengine. A single mutex per Engine
// plays the role of the database row locks, so every operation is atomic and linearizable.
// Overdue reservations reclaimed by a Reserve or DirectLoan stay reclaimed when the claim itself is
// rejected as a duplicate or a withdrawn item, exactly as postgresengine commits them.
// It is used by unit tests, acceptance scenarios, the HTTP tests and local demos.
//
//	engine, err := memengine.NewEngine(memengine.WithClock(rental.NewManualClock(start)))
//	_, _ = engine.RegisterItem(ctx, "catan", "Catan", 2)
//	hold, err := engine.Reserve(ctx, "catan", rental.UserHolder("u-1"))
package memengine
