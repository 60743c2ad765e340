package returnloan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/returnloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/rentaltest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	handler := returnloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 1)
	loan := GivenLoanWasMade(ctx, t, engine, "catan", rental.UserHolder("u-1"))
	clock.Advance(3 * 24 * time.Hour)

	// act
	returned, result, err := handler.Handle(ctx, returnloan.BuildCommand(loan.ID, StaffActor))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, rental.CloseReasonReturned, returned.CloseReason)
	assert.Equal(t, 1, AvailableCount(ctx, t, engine, "catan"))
}

func Test_CommandHandler_Handle_Idempotent_WhenAlreadyReturned(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := returnloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 2)
	loan := GivenLoanWasMade(ctx, t, engine, "catan", rental.UserHolder("u-1"))
	_, _, err := handler.Handle(ctx, returnloan.BuildCommand(loan.ID, StaffActor))
	require.NoError(t, err)

	// act
	again, result, err := handler.Handle(ctx, returnloan.BuildCommand(loan.ID, StaffActor))

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, loan.ID, again.ID)
	assert.Equal(t, rental.CloseReasonReturned, again.CloseReason)
	assert.Equal(t, 2, AvailableCount(ctx, t, engine, "catan"), "a double return must not release twice")
	RequireInvariants(ctx, t, engine, "catan")
}

func Test_CommandHandler_Handle_ByHolder(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := returnloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "azul", 1)
	loan := GivenLoanWasMade(ctx, t, engine, "azul", rental.GuestHolder("Dana"))

	// act
	returned, _, err := handler.Handle(ctx, returnloan.BuildCommandByHolder("azul", rental.GuestHolder("DANA"), StaffActor))

	// assert
	require.NoError(t, err)
	assert.Equal(t, loan.ID, returned.ID)
	assert.Equal(t, 1, AvailableCount(ctx, t, engine, "azul"))
}

func Test_CommandHandler_Handle_Reservation_IsWrongKind(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := returnloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "azul", 1)
	reservation := GivenReservationWasMade(ctx, t, engine, "azul", rental.UserHolder("u-1"))

	// act
	_, _, err := handler.Handle(ctx, returnloan.BuildCommand(reservation.ID, StaffActor))

	// assert
	assert.ErrorIs(t, err, rental.ErrWrongKind)
	assert.Zero(t, AvailableCount(ctx, t, engine, "azul"))
}
