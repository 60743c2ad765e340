package bulk_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/bulk"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/memengine"
)

func givenEngine(t *testing.T) (*memengine.Engine, *rental.ManualClock) {
	t.Helper()

	clock := rental.NewManualClock(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	engine, err := memengine.NewEngine(memengine.WithClock(clock))
	require.NoError(t, err)

	return engine, clock
}

func Test_ApproveAllReservations_PartialSuccess(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := givenEngine(t)
	holder := rental.UserHolder("u-1")

	// arrange
	for _, id := range []string{"catan", "azul", "splendor"} {
		_, err := engine.RegisterItem(ctx, id, id, 1)
		require.NoError(t, err)
	}

	_, err := engine.Reserve(ctx, "splendor", holder)
	require.NoError(t, err)
	clock.Advance(31 * time.Minute)

	_, err = engine.Reserve(ctx, "catan", holder)
	require.NoError(t, err)
	_, err = engine.Reserve(ctx, "azul", holder)
	require.NoError(t, err)

	// act
	result, err := NewCoordinator(engine, WithParallelism(2)).ApproveAllReservations(ctx, holder, "staff-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"azul", "catan"}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "splendor", result.Failed[0].ItemID)
	assert.Equal(t, rental.ReasonExpired, result.Failed[0].Reason)

	for _, id := range []string{"catan", "azul", "splendor"} {
		assert.NoError(t, engine.CheckInvariants(ctx, id))
	}

	splendor, getErr := engine.GetItem(ctx, "splendor")
	require.NoError(t, getErr)
	assert.Equal(t, 1, splendor.AvailableCount)
}

func Test_ReturnAllLoans_ReturnsOnlyLoans(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := givenEngine(t)
	holder := rental.GuestHolder("Kim")

	// arrange
	_, err := engine.RegisterItem(ctx, "catan", "Catan", 2)
	require.NoError(t, err)
	_, err = engine.RegisterItem(ctx, "azul", "Azul", 1)
	require.NoError(t, err)
	_, err = engine.DirectLoan(ctx, "catan", holder, "staff-1")
	require.NoError(t, err)
	_, err = engine.Reserve(ctx, "azul", holder)
	require.NoError(t, err)

	// act
	result, err := NewCoordinator(engine).ReturnAllLoans(ctx, holder, "staff-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"catan"}, result.Succeeded)
	assert.Empty(t, result.Failed)

	open, openErr := engine.OpenHoldsForHolder(ctx, holder)
	require.NoError(t, openErr)
	require.Len(t, open, 1)
	assert.Equal(t, rental.KindReservation, open[0].Kind)
}

func Test_ReturnAllLoans_When_HolderHasNothingOpen_ReturnsEmptyResult(t *testing.T) {
	ctx := context.Background()
	engine, _ := givenEngine(t)

	result, err := NewCoordinator(engine).ReturnAllLoans(ctx, rental.UserHolder("u-9"), "staff-1")

	require.NoError(t, err)
	assert.NotNil(t, result.Succeeded)
	assert.NotNil(t, result.Failed)
	assert.Equal(t, 0, result.SucceededCount())
}

type engineStub struct {
	holds     rental.Holds
	listErr   error
	failFor   map[string]error
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (s *engineStub) OpenHoldsForHolder(context.Context, rental.Holder) (rental.Holds, error) {
	return s.holds, s.listErr
}

func (s *engineStub) ConvertToLoan(_ context.Context, holdID string, _ string) (rental.Hold, error) {
	return rental.Hold{}, s.failFor[holdID]
}

func (s *engineStub) Return(_ context.Context, holdID string, _ string) (rental.Hold, error) {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	for {
		seen := s.maxFlight.Load()
		if current <= seen || s.maxFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	time.Sleep(5 * time.Millisecond)

	return rental.Hold{}, s.failFor[holdID]
}

func Test_ReturnAllLoans_ClassifiesFailuresAndBoundsParallelism(t *testing.T) {
	// setup
	ctx := context.Background()
	stub := &engineStub{failFor: map[string]error{
		"h-2": rental.ErrAlreadyClosed,
		"h-4": errors.New("connection reset"),
		"h-5": errors.Join(errors.New("deadlock detected"), rental.ErrTransient),
	}}

	// arrange
	for _, id := range []string{"h-1", "h-2", "h-3", "h-4", "h-5", "h-6"} {
		stub.holds = append(stub.holds, rental.Hold{ID: id, ItemID: "item-" + id, Kind: rental.KindLoan})
	}

	// act
	result, err := NewCoordinator(stub, WithParallelism(2)).ReturnAllLoans(ctx, rental.UserHolder("u-1"), "staff-1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.SucceededCount())
	require.Len(t, result.Failed, 3)
	assert.Equal(t, rental.ReasonAlreadyClosed, result.Failed[0].Reason)
	assert.Equal(t, rental.ReasonInternal, result.Failed[1].Reason)
	assert.Equal(t, rental.ReasonTransient, result.Failed[2].Reason)
	assert.LessOrEqual(t, stub.maxFlight.Load(), int32(2))
}

func Test_ApproveAllReservations_When_ListingFails_ReturnsTheError(t *testing.T) {
	stub := &engineStub{listErr: rental.ErrQueryingFailed}

	_, err := NewCoordinator(stub).ApproveAllReservations(context.Background(), rental.UserHolder("u-1"), "staff-1")

	assert.ErrorIs(t, err, rental.ErrQueryingFailed)
}
