package converttoloan

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operation needed by the CommandHandler.
type Engine interface {
	ConvertToLoan(ctx context.Context, holdID string, actor string) (rental.Hold, error)
}

// CommandHandler converts reservations into loans and retries transient storage conflicts.
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

// Handle converts the reservation and returns the loan.
// On ErrReservationExpired the expired hold is returned together with the error.
func (h CommandHandler) Handle(ctx context.Context, command Command) (rental.Hold, shell.HandlerResult, error) {
	var hold rental.Hold

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		hold, execErr = h.engine.ConvertToLoan(retryCtx, command.HoldID, command.Actor)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return hold, shell.NewErrorResult(retryMetrics), err
	}

	return hold, shell.NewSuccessResult(retryMetrics), nil
}
