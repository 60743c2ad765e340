package rentaltest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/memengine"
)

// StaffActor is the actor used for staff-initiated transitions in tests.
const StaffActor = "staff-1"

// StartOfDay is the fixed opening time of the club room used as the initial clock value.
var StartOfDay = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

// GivenEngine creates an in-memory engine driven by a manual clock set to StartOfDay.
func GivenEngine(t *testing.T, options ...memengine.Option) (*memengine.Engine, *rental.ManualClock) {
	t.Helper()

	clock := rental.NewManualClock(StartOfDay)
	engine, err := memengine.NewEngine(append([]memengine.Option{memengine.WithClock(clock)}, options...)...)
	require.NoError(t, err, "creating the engine failed")

	return engine, clock
}

// GivenItemWasRegistered registers itemID with the given number of copies.
func GivenItemWasRegistered(ctx context.Context, t *testing.T, engine rental.Engine, itemID string, quantity int) {
	t.Helper()

	_, err := engine.RegisterItem(ctx, itemID, itemID, quantity)
	require.NoError(t, err, "registering the item failed")
}

// GivenReservationWasMade reserves a copy of itemID for holder.
func GivenReservationWasMade(ctx context.Context, t *testing.T, engine rental.Engine, itemID string, holder rental.Holder) rental.Hold {
	t.Helper()

	hold, err := engine.Reserve(ctx, itemID, holder)
	require.NoError(t, err, "reserving failed")

	return hold
}

// GivenLoanWasMade lends a copy of itemID to holder as StaffActor.
func GivenLoanWasMade(ctx context.Context, t *testing.T, engine rental.Engine, itemID string, holder rental.Holder) rental.Hold {
	t.Helper()

	hold, err := engine.DirectLoan(ctx, itemID, holder, StaffActor)
	require.NoError(t, err, "lending failed")

	return hold
}

// AvailableCount reads the available count of itemID.
func AvailableCount(ctx context.Context, t *testing.T, engine rental.Engine, itemID string) int {
	t.Helper()

	item, err := engine.GetItem(ctx, itemID)
	require.NoError(t, err, "reading the item failed")

	return item.AvailableCount
}

// RequireInvariants fails the test unless available_count == quantity - open holds for itemID.
func RequireInvariants(ctx context.Context, t *testing.T, engine rental.Engine, itemID string) {
	t.Helper()

	require.NoError(t, engine.CheckInvariants(ctx, itemID), "ledger invariants of %s violated", itemID)
}
