package holderholds_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/query/holderholds"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/rentaltest" //nolint:revive
)

func Test_QueryHandler_Handle_GuestByNormalizedName(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	handler := holderholds.NewQueryHandler(engine, holderholds.WithClock(clock))

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 1)
	GivenItemWasRegistered(ctx, t, engine, "azul", 1)
	GivenItemWasRegistered(ctx, t, engine, "splendor", 1)
	GivenReservationWasMade(ctx, t, engine, "catan", rental.GuestHolder("Dana"))
	GivenLoanWasMade(ctx, t, engine, "azul", rental.GuestHolder(" dana "))
	GivenLoanWasMade(ctx, t, engine, "splendor", rental.GuestHolder("Eve"))
	clock.Advance(10 * time.Minute)

	// act
	result, err := handler.Handle(ctx, holderholds.BuildQuery(rental.GuestHolder("DANA")))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "guest:dana", result.HolderKey)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, 1, result.Reservations)
	assert.Equal(t, 1, result.Loans)
	assert.Equal(t, "catan", result.Holds[0].ItemID)
	assert.Equal(t, int64((20 * time.Minute).Seconds()), result.Holds[0].RemainingSecs)
	assert.False(t, result.Holds[0].Overdue)
}

func Test_QueryHandler_Handle_InvalidHolder(t *testing.T) {
	// setup
	engine, _ := GivenEngine(t)
	handler := holderholds.NewQueryHandler(engine)

	// act
	_, err := handler.Handle(context.Background(), holderholds.BuildQuery(rental.Holder{}))

	// assert
	assert.ErrorIs(t, err, rental.ErrInvalidHolder)
}

func Test_ProjectHolderHolds_OverdueLoan(t *testing.T) {
	// arrange
	now := StartOfDay.Add(8 * 24 * time.Hour)
	closedAt := StartOfDay.Add(time.Hour)
	holds := rental.Holds{
		{ID: "h-1", ItemID: "catan", Kind: rental.KindLoan, CreatedAt: StartOfDay, Deadline: StartOfDay.Add(7 * 24 * time.Hour)},
		{ID: "h-2", ItemID: "azul", Kind: rental.KindLoan, CreatedAt: StartOfDay, Deadline: StartOfDay.Add(7 * 24 * time.Hour), ClosedAt: &closedAt},
	}

	// act
	result := holderholds.ProjectHolderHolds(rental.UserHolder("u-1"), holds, now)

	// assert
	require.Equal(t, 1, result.Count)
	assert.True(t, result.Holds[0].Overdue)
	assert.Zero(t, result.Holds[0].RemainingSecs)
	assert.Equal(t, 1, result.Loans)
}
