// Package cancelreservation implements withdrawing a reservation and releasing its copy.
package cancelreservation

import (
	"context"
	"errors"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operations needed by the CommandHandler.
type Engine interface {
	Cancel(ctx context.Context, holdID string, actor string) (rental.Hold, error)
	CancelByHolder(ctx context.Context, itemID string, holder rental.Holder) (rental.Hold, error)
	GetHold(ctx context.Context, holdID string) (rental.Hold, error)
}

// CommandHandler cancels reservations and retries transient storage conflicts.
type CommandHandler struct {
	engine       Engine
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(engine Engine, opts ...Option) CommandHandler {
	handler := CommandHandler{
		engine: engine,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle cancels the reservation. A reservation that is already closed,
// canceled or expired, yields an idempotent result with the closed hold.
func (h CommandHandler) Handle(ctx context.Context, command Command) (rental.Hold, shell.HandlerResult, error) {
	var (
		hold         rental.Hold
		isIdempotent bool
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		hold, isIdempotent, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return rental.Hold{}, shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return hold, shell.NewIdempotentResult(retryMetrics), nil
	}

	return hold, shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (rental.Hold, bool, error) {
	if command.HoldID == "" {
		hold, err := h.engine.CancelByHolder(ctx, command.ItemID, command.Holder)
		return hold, false, err
	}

	hold, err := h.engine.Cancel(ctx, command.HoldID, command.Actor)
	if errors.Is(err, rental.ErrAlreadyClosed) {
		closed, getErr := h.engine.GetHold(ctx, command.HoldID)
		return closed, true, getErr
	}

	return hold, false, err
}
