package reserve_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/features/command/reserve"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/rentaltest" //nolint:revive
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := reserve.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 2)

	// act
	hold, result, err := handler.Handle(ctx, reserve.BuildCommand("catan", rental.UserHolder("u-1")))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.Equal(t, rental.KindReservation, hold.Kind)
	assert.Equal(t, StartOfDay.Add(30*time.Minute), hold.Deadline)
	assert.Equal(t, 1, AvailableCount(ctx, t, engine, "catan"))
}

func Test_CommandHandler_Handle_OutOfStock_IsNotRetried(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := reserve.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "azul", 1)
	GivenReservationWasMade(ctx, t, engine, "azul", rental.GuestHolder("Dana"))

	// act
	_, result, err := handler.Handle(ctx, reserve.BuildCommand("azul", rental.UserHolder("u-2")))

	// assert
	assert.ErrorIs(t, err, rental.ErrOutOfStock)
	assert.Equal(t, 1, result.RetryAttempts)
	assert.False(t, result.RetriesExhausted)
	RequireInvariants(ctx, t, engine, "azul")
}

func Test_CommandHandler_Handle_DuplicateHold(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := reserve.NewCommandHandler(engine)

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 3)
	GivenReservationWasMade(ctx, t, engine, "catan", rental.GuestHolder("Dana"))

	// act
	_, _, err := handler.Handle(ctx, reserve.BuildCommand("catan", rental.GuestHolder("  dana ")))

	// assert
	assert.ErrorIs(t, err, rental.ErrDuplicateHold)
	assert.Equal(t, 2, AvailableCount(ctx, t, engine, "catan"))
}

func Test_CommandHandler_Handle_ConcurrentReservations_NeverOversell(t *testing.T) {
	// setup
	ctx := context.Background()
	engine, _ := GivenEngine(t)
	handler := reserve.NewCommandHandler(engine)

	// arrange
	const copies = 3
	const members = 10
	GivenItemWasRegistered(ctx, t, engine, "wingspan", copies)

	// act
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		outOfStock int
	)

	for i := range members {
		wg.Add(1)

		go func(member int) {
			defer wg.Done()

			_, _, err := handler.Handle(ctx, reserve.BuildCommand("wingspan", rental.UserHolder(string(rune('a'+member)))))

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case shell.IsDomainRejection(err):
				outOfStock++
			}
		}(i)
	}

	wg.Wait()

	// assert
	assert.Equal(t, copies, succeeded)
	assert.Equal(t, members-copies, outOfStock)
	assert.Zero(t, AvailableCount(ctx, t, engine, "wingspan"))
	RequireInvariants(ctx, t, engine, "wingspan")
}

type transientEngine struct {
	calls int
}

func (e *transientEngine) Reserve(_ context.Context, itemID string, holder rental.Holder) (rental.Hold, error) {
	e.calls++
	if e.calls < 3 {
		return rental.Hold{}, rental.ErrTransient
	}

	return rental.Hold{ID: "h-1", ItemID: itemID, Holder: holder, Kind: rental.KindReservation}, nil
}

func Test_CommandHandler_Handle_RetriesTransientConflicts(t *testing.T) {
	// setup
	engine := &transientEngine{}
	handler := reserve.NewCommandHandler(engine, reserve.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))

	// act
	hold, result, err := handler.Handle(context.Background(), reserve.BuildCommand("catan", rental.UserHolder("u-1")))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "h-1", hold.ID)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Equal(t, 3, engine.calls)
}
