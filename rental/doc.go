// Package rental provides the core types of the board-game rental engine: catalog items with their
// inventory counters, holds (short reservations and multi-day loans), the append-only audit log,
// and the pure status resolver that derives an item's display status.
//
// The package defines the contracts shared by the storage engines (postgresengine, memengine),
// the bulk coordinator, the expiry sweeper and the application layer, including the error taxonomy
// and the dependency-free observability interfaces.
//
// Invariants every engine upholds for each item, at all times:
//
//	0 <= AvailableCount <= Quantity
//	AvailableCount == Quantity - |open holds for that item|
//
// Common usage pattern:
//
//	hold, err := engine.Reserve(ctx, itemID, rental.UserHolder(userID))
//	if errors.Is(err, rental.ErrOutOfStock) {
//		// user-facing rejection, never retried automatically
//	}
//
//	hold, err = engine.ConvertToLoan(ctx, hold.ID, "kiosk")
//	hold, err = engine.Return(ctx, hold.ID, "kiosk")
//
//	resolution, err := engine.ResolveStatus(ctx, itemID)
package rental
