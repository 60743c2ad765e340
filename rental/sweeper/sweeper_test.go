package sweeper_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/memengine"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/sweeper"
)

type expirerStub struct {
	calls     atomic.Int32
	lastLimit atomic.Uint32
	err       error
}

func (s *expirerStub) ExpireDue(_ context.Context, limit uint) (int, error) {
	s.calls.Add(1)
	s.lastLimit.Store(uint32(limit))

	return 0, s.err
}

func Test_New_RejectsNonPositiveInterval(t *testing.T) {
	_, err := New(&expirerStub{}, WithInterval(0))

	assert.ErrorIs(t, err, rental.ErrInvalidDuration)
}

func Test_SweepOnce_ExpiresOverdueReservationsAndReleasesCopies(t *testing.T) {
	// setup
	ctx := context.Background()
	clock := rental.NewManualClock(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	engine, err := memengine.NewEngine(memengine.WithClock(clock))
	require.NoError(t, err)

	s, err := New(engine, WithBatchSize(10))
	require.NoError(t, err)

	// arrange
	_, err = engine.RegisterItem(ctx, "catan", "Catan", 2)
	require.NoError(t, err)
	_, err = engine.Reserve(ctx, "catan", rental.UserHolder("u-1"))
	require.NoError(t, err)
	_, err = engine.Reserve(ctx, "catan", rental.GuestHolder("Kim"))
	require.NoError(t, err)
	clock.Advance(time.Hour)

	// act
	expired, sweepErr := s.SweepOnce(ctx)
	again, againErr := s.SweepOnce(ctx)

	// assert
	require.NoError(t, sweepErr)
	require.NoError(t, againErr)
	assert.Equal(t, 2, expired)
	assert.Equal(t, 0, again)

	item, getErr := engine.GetItem(ctx, "catan")
	require.NoError(t, getErr)
	assert.Equal(t, 2, item.AvailableCount)

	entries, listErr := engine.ListAuditLog(ctx, "catan", 0)
	require.NoError(t, listErr)
	assert.Equal(t, rental.EventExpire, entries[0].EventType)
	assert.Equal(t, rental.SystemActor, entries[0].Actor)
}

func Test_SweepOnce_PassesTheBatchSize(t *testing.T) {
	stub := &expirerStub{}
	s, err := New(stub, WithBatchSize(7))
	require.NoError(t, err)

	_, err = s.SweepOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint32(7), stub.lastLimit.Load())
}

func Test_Run_KeepsSweepingAfterErrorsUntilCanceled(t *testing.T) {
	// setup
	stub := &expirerStub{err: errors.New("database unavailable")}
	s, err := New(stub, WithInterval(5*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// act
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return stub.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	// assert
	select {
	case runErr := <-done:
		assert.NoError(t, runErr)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
