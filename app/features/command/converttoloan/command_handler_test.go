package converttoloan_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/converttoloan"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/rentaltest" //nolint:revive
)

func Test_CommandHandler_Handle_Success_KeepsCountUnchanged(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	handler := converttoloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 2)
	reservation := GivenReservationWasMade(ctx, t, engine, "catan", rental.UserHolder("u-1"))
	clock.Advance(10 * time.Minute)

	// act
	loan, result, err := handler.Handle(ctx, converttoloan.BuildCommand(reservation.ID, StaffActor))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, reservation.ID, loan.ID)
	assert.Equal(t, rental.KindLoan, loan.Kind)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), loan.Deadline)
	require.NotNil(t, loan.ConvertedAt)
	assert.Equal(t, 1, AvailableCount(ctx, t, engine, "catan"))
	RequireInvariants(ctx, t, engine, "catan")
}

func Test_CommandHandler_Handle_ExpiredReservation(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	handler := converttoloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "azul", 1)
	reservation := GivenReservationWasMade(ctx, t, engine, "azul", rental.GuestHolder("Dana"))
	clock.Advance(31 * time.Minute)

	// act
	hold, result, err := handler.Handle(ctx, converttoloan.BuildCommand(reservation.ID, StaffActor))

	// assert
	assert.ErrorIs(t, err, rental.ErrReservationExpired)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Equal(t, rental.CloseReasonExpired, hold.CloseReason)
	assert.Equal(t, 1, AvailableCount(ctx, t, engine, "azul"))
}

func Test_CommandHandler_Handle_Rejections(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := converttoloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 2)
	loan := GivenLoanWasMade(ctx, t, engine, "catan", rental.UserHolder("u-1"))

	// act
	_, _, wrongKindErr := handler.Handle(ctx, converttoloan.BuildCommand(loan.ID, StaffActor))
	_, _, notFoundErr := handler.Handle(ctx, converttoloan.BuildCommand("no-such-hold", StaffActor))

	// assert
	assert.ErrorIs(t, wrongKindErr, rental.ErrWrongKind)
	assert.ErrorIs(t, notFoundErr, rental.ErrHoldNotFound)
}

func Test_CommandHandler_Handle_ReservationAlreadyReclaimed(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, clock := GivenEngine(t)
	handler := converttoloan.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 1)
	reservation := GivenReservationWasMade(ctx, t, engine, "catan", rental.UserHolder("alice"))
	clock.Advance(31 * time.Minute)
	expired, err := engine.ExpireDue(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, expired)
	GivenReservationWasMade(ctx, t, engine, "catan", rental.UserHolder("bob"))

	// act
	_, result, err := handler.Handle(ctx, converttoloan.BuildCommand(reservation.ID, StaffActor))

	// assert
	assert.ErrorIs(t, err, rental.ErrAlreadyClosed)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 0, AvailableCount(ctx, t, engine, "catan"))
	RequireInvariants(ctx, t, engine, "catan")
}
