package postgresengine_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/observability/testdoubles"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/postgresengine/pgtesthelpers"
)

var startOfDay = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func GivenEngine(t *testing.T, options ...Option) (Engine, *rental.ManualClock) {
	t.Helper()

	clock := rental.NewManualClock(startOfDay)
	wrapper := pgtesthelpers.CreateWrapperWithTestConfig(t, append([]Option{WithClock(clock)}, options...)...)
	t.Cleanup(wrapper.Close)

	return wrapper.GetEngine(), clock
}

func GivenItemWasRegistered(t *testing.T, ctx context.Context, engine Engine, itemID string, quantity int) {
	t.Helper()

	_, err := engine.RegisterItem(ctx, itemID, itemID, quantity)
	require.NoError(t, err, "registering the item failed")
}

func Test_NewEngine_RejectsNilConnections(t *testing.T) {
	_, err := NewEngineFromPGXPool(nil)
	assert.ErrorIs(t, err, rental.ErrNilDatabaseConnection)

	_, err = NewEngineFromSQLDB(nil)
	assert.ErrorIs(t, err, rental.ErrNilDatabaseConnection)

	_, err = NewEngineFromSQLX(nil)
	assert.ErrorIs(t, err, rental.ErrNilDatabaseConnection)

	_, err = NewEngineFromPGXPoolAndReplica(nil, nil)
	assert.ErrorIs(t, err, rental.ErrNilDatabaseConnection)
}

func Test_Migrate_IsRepeatable(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)

	// act
	err := engine.Migrate(ctx)

	// assert
	assert.NoError(t, err)
}

func Test_Reserve_ConvertAndReturn_KeepTheLedgerBalanced(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "catan", 2)
	holder := rental.UserHolder("u-1")

	// act & assert
	reservation, err := engine.Reserve(ctx, "catan", holder)
	require.NoError(t, err)
	assert.Equal(t, rental.KindReservation, reservation.Kind)
	assert.Equal(t, startOfDay.Add(30*time.Minute), reservation.Deadline)
	require.NoError(t, engine.CheckInvariants(ctx, "catan"))

	clock.Advance(10 * time.Minute)
	loan, err := engine.ConvertToLoan(ctx, reservation.ID, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, rental.KindLoan, loan.Kind)
	assert.Equal(t, startOfDay.Add(10*time.Minute+7*24*time.Hour), loan.Deadline)

	item, err := engine.GetItem(ctx, "catan")
	require.NoError(t, err)
	assert.Equal(t, 1, item.AvailableCount)

	clock.Advance(time.Hour)
	returned, err := engine.Return(ctx, loan.ID, "staff-1")
	require.NoError(t, err)
	assert.Equal(t, rental.CloseReasonReturned, returned.CloseReason)

	_, err = engine.Return(ctx, loan.ID, "staff-1")
	assert.ErrorIs(t, err, rental.ErrAlreadyClosed)

	item, err = engine.GetItem(ctx, "catan")
	require.NoError(t, err)
	assert.Equal(t, 2, item.AvailableCount)
	require.NoError(t, engine.CheckInvariants(ctx, "catan"))
}

func Test_Reserve_When_NoCopyLeft_FailsAndRecordsDemandSignal(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "azul", 1)
	_, err := engine.Reserve(ctx, "azul", rental.UserHolder("u-1"))
	require.NoError(t, err)
	clock.Advance(time.Minute)

	// act
	_, err = engine.Reserve(ctx, "azul", rental.GuestHolder("Kim"))

	// assert
	assert.ErrorIs(t, err, rental.ErrOutOfStock)

	entries, err := engine.ListAuditLog(ctx, "azul", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, rental.EventDemandSignal, entries[0].EventType)
	assert.Equal(t, rental.EventReserve, entries[1].EventType)
}

func Test_Reserve_When_HolderAlreadyHasOpenHold_FailsWithDuplicate(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "dixit", 3)
	_, err := engine.Reserve(ctx, "dixit", rental.GuestHolder("  Kim "))
	require.NoError(t, err)

	// act
	_, err = engine.Reserve(ctx, "dixit", rental.GuestHolder("kim"))

	// assert
	assert.ErrorIs(t, err, rental.ErrDuplicateHold)

	item, err := engine.GetItem(ctx, "dixit")
	require.NoError(t, err)
	assert.Equal(t, 2, item.AvailableCount)
}

func Test_Reserve_When_UserIDIsBlank_StoresAGuestHold(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "dixit", 2)

	// act
	hold, err := engine.Reserve(ctx, "dixit", rental.Holder{UserID: "  ", GuestName: "x"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, rental.GuestHolder("x"), hold.Holder)

	stored, err := engine.GetHold(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, rental.GuestHolder("x"), stored.Holder)
	assert.NoError(t, engine.CheckInvariants(ctx, "dixit"))
}

func Test_Reserve_When_Rejected_CommitsTheLazyReclaim(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "dixit", 2)
	overdue, err := engine.Reserve(ctx, "dixit", rental.UserHolder("bob"))
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)
	_, err = engine.Reserve(ctx, "dixit", rental.UserHolder("alice"))
	require.NoError(t, err)
	clock.Advance(15 * time.Minute)

	// act
	_, err = engine.Reserve(ctx, "dixit", rental.UserHolder("alice"))

	// assert
	assert.ErrorIs(t, err, rental.ErrDuplicateHold)

	reclaimed, err := engine.GetHold(ctx, overdue.ID)
	require.NoError(t, err)
	assert.False(t, reclaimed.IsOpen())
	assert.Equal(t, rental.CloseReasonExpired, reclaimed.CloseReason)

	item, err := engine.GetItem(ctx, "dixit")
	require.NoError(t, err)
	assert.Equal(t, 1, item.AvailableCount)
	assert.NoError(t, engine.CheckInvariants(ctx, "dixit"))
}

func Test_ConvertToLoan_When_ReservationExpired_CommitsTheExpiry(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "splendor", 1)
	reservation, err := engine.Reserve(ctx, "splendor", rental.UserHolder("u-1"))
	require.NoError(t, err)
	clock.Advance(31 * time.Minute)

	// act
	_, err = engine.ConvertToLoan(ctx, reservation.ID, "staff-1")

	// assert
	assert.ErrorIs(t, err, rental.ErrReservationExpired)

	hold, err := engine.GetHold(ctx, reservation.ID)
	require.NoError(t, err)
	assert.False(t, hold.IsOpen())
	assert.Equal(t, rental.CloseReasonExpired, hold.CloseReason)

	item, err := engine.GetItem(ctx, "splendor")
	require.NoError(t, err)
	assert.Equal(t, 1, item.AvailableCount)
}

func Test_ExpireDue_And_ResolveStatus_ReclaimOverdueReservations(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "carcassonne", 2)
	GivenItemWasRegistered(t, ctx, engine, "patchwork", 1)
	_, err := engine.Reserve(ctx, "carcassonne", rental.UserHolder("u-1"))
	require.NoError(t, err)
	_, err = engine.Reserve(ctx, "patchwork", rental.UserHolder("u-1"))
	require.NoError(t, err)
	_, err = engine.DirectLoan(ctx, "carcassonne", rental.UserHolder("u-2"), "staff-1")
	require.NoError(t, err)
	clock.Advance(31 * time.Minute)

	// act
	resolution, err := engine.ResolveStatus(ctx, "patchwork")
	require.NoError(t, err)
	expired, expireErr := engine.ExpireDue(ctx, 0)

	// assert
	require.NoError(t, expireErr)
	assert.Equal(t, 1, expired)
	assert.Equal(t, rental.StatusAvailable, resolution.Status)

	open, err := engine.OpenHoldsForItem(ctx, "carcassonne")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, rental.KindLoan, open[0].Kind)
	require.NoError(t, engine.CheckInvariants(ctx, "carcassonne"))
	require.NoError(t, engine.CheckInvariants(ctx, "patchwork"))
}

func Test_SetManualStatus_WithdrawsTheItem(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "brass", 1)
	lost := rental.ManualStatusLost

	// act
	item, err := engine.SetManualStatus(ctx, "brass", &lost, "staff-1", "box missing")

	// assert
	require.NoError(t, err)
	require.NotNil(t, item.ManualStatus)
	assert.Equal(t, rental.ManualStatusLost, *item.ManualStatus)

	_, err = engine.Reserve(ctx, "brass", rental.UserHolder("u-1"))
	assert.ErrorIs(t, err, rental.ErrItemWithdrawn)

	resolution, err := engine.ResolveStatus(ctx, "brass")
	require.NoError(t, err)
	assert.Equal(t, rental.StatusLost, resolution.Status)
}

func Test_RegisterItem_When_ShrinkingBelowClaimedCopies_FailsWithLedgerInvariant(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	GivenItemWasRegistered(t, ctx, engine, "root", 1)
	_, err := engine.Reserve(ctx, "root", rental.UserHolder("u-1"))
	require.NoError(t, err)

	// act
	_, err = engine.RegisterItem(ctx, "root", "root", 0)

	// assert
	assert.ErrorIs(t, err, rental.ErrLedgerInvariant)
}

func Test_Reserve_When_ManyHoldersRaceForTheLastCopies_NeverOversells(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	const copies = 3
	const holders = 20
	GivenItemWasRegistered(t, ctx, engine, "wingspan", copies)

	var granted, rejected atomic.Int32
	g, gctx := errgroup.WithContext(ctx)

	// act
	for i := 0; i < holders; i++ {
		holder := rental.UserHolder(fmt.Sprintf("u-%d", i))

		g.Go(func() error {
			_, err := engine.Reserve(gctx, "wingspan", holder)
			switch {
			case err == nil:
				granted.Add(1)
			default:
				assert.ErrorIs(t, err, rental.ErrOutOfStock)
				rejected.Add(1)
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())

	// assert
	assert.Equal(t, int32(copies), granted.Load())
	assert.Equal(t, int32(holders-copies), rejected.Load())
	require.NoError(t, engine.CheckInvariants(ctx, "wingspan"))
}

func Test_Reserve_IsObserved(t *testing.T) {
	// setup
	ctx := context.Background()
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	engine, _ := GivenEngine(t, WithMetrics(metrics), WithTracing(tracing))
	GivenItemWasRegistered(t, ctx, engine, "ark-nova", 0)

	// act
	_, err := engine.Reserve(ctx, "ark-nova", rental.UserHolder("u-1"))

	// assert
	assert.ErrorIs(t, err, rental.ErrOutOfStock)
	assert.True(t, metrics.HasCounter("rental_out_of_stock_total").WithOperation("reserve").Assert())
	assert.True(t, metrics.HasDuration("rental_engine_operation_duration_seconds").
		WithOperation("reserve").WithStatus("conflict").Assert())
	assert.True(t, tracing.HasSpan("rental.reserve").WithStatus("conflict").Assert())
}
