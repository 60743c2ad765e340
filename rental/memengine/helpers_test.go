package memengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/memengine"
)

var startOfDay = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func GivenEngine(t *testing.T) (*Engine, *rental.ManualClock) {
	t.Helper()

	clock := rental.NewManualClock(startOfDay)
	engine, err := NewEngine(WithClock(clock))
	require.NoError(t, err, "creating the engine failed")

	return engine, clock
}

func GivenItemWasRegistered(t *testing.T, ctx context.Context, engine *Engine, itemID string, quantity int) {
	t.Helper()

	_, err := engine.RegisterItem(ctx, itemID, itemID, quantity)
	require.NoError(t, err, "registering the item failed")
}

func GivenReservationWasMade(t *testing.T, ctx context.Context, engine *Engine, itemID string, holder rental.Holder) rental.Hold {
	t.Helper()

	hold, err := engine.Reserve(ctx, itemID, holder)
	require.NoError(t, err, "reserving failed")

	return hold
}

func GivenLoanWasMade(t *testing.T, ctx context.Context, engine *Engine, itemID string, holder rental.Holder) rental.Hold {
	t.Helper()

	hold, err := engine.DirectLoan(ctx, itemID, holder, "staff-1")
	require.NoError(t, err, "lending failed")

	return hold
}

func AvailableCount(t *testing.T, ctx context.Context, engine *Engine, itemID string) int {
	t.Helper()

	item, err := engine.GetItem(ctx, itemID)
	require.NoError(t, err, "reading the item failed")

	return item.AvailableCount
}

type auditPublisherSpy struct {
	entries rental.AuditEntries
}

func (s *auditPublisherSpy) PublishAuditEntry(_ context.Context, entry rental.AuditEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}
