// Package bulkreturn returns all open loans of a holder with partial success.
package bulkreturn

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Coordinator is the bulk operation needed by the CommandHandler.
type Coordinator interface {
	ReturnAllLoans(ctx context.Context, holder rental.Holder, actor string) (rental.BulkResult, error)
}

// CommandHandler runs the bulk return.
type CommandHandler struct {
	coordinator  Coordinator
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
func NewCommandHandler(coordinator Coordinator, opts ...Option) CommandHandler {
	handler := CommandHandler{
		coordinator: coordinator,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle returns all open loans of the holder.
// A holder without loans gets an empty result and an idempotent outcome.
func (h CommandHandler) Handle(ctx context.Context, command Command) (rental.BulkResult, shell.HandlerResult, error) {
	if err := command.Holder.Validate(); err != nil {
		return rental.NewBulkResult(), shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	if command.Actor == "" {
		return rental.NewBulkResult(), shell.NewErrorResult(shell.RetryMetrics{}), rental.ErrEmptyActor
	}

	var result rental.BulkResult

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		result, execErr = h.coordinator.ReturnAllLoans(retryCtx, command.Holder, command.Actor)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return rental.NewBulkResult(), shell.NewErrorResult(retryMetrics), err
	}

	if result.SucceededCount() == 0 && result.FailedCount() == 0 {
		return result, shell.NewIdempotentResult(retryMetrics), nil
	}

	return result, shell.NewSuccessResult(retryMetrics), nil
}
