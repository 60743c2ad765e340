// Package bulkapprove converts all open reservations of a holder into loans with partial success.
//
// Each reservation is converted in its own engine transaction, so one expired
// reservation never blocks the others. Per-reservation failures are reported in
// the BulkResult, the handler only fails when the holder's holds cannot be listed.
package bulkapprove

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Coordinator is the bulk operation needed by the CommandHandler.
type Coordinator interface {
	ApproveAllReservations(ctx context.Context, holder rental.Holder, actor string) (rental.BulkResult, error)
}

// CommandHandler runs the bulk approval.
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

// Handle validates the command and approves all open reservations of the holder.
// A holder without reservations gets an empty result and an idempotent outcome.
func (h CommandHandler) Handle(ctx context.Context, command Command) (rental.BulkResult, shell.HandlerResult, error) {
	if err := command.Holder.Validate(); err != nil {
		return rental.NewBulkResult(), shell.NewErrorResult(shell.RetryMetrics{}), err
	}

	if command.Actor == "" {
		return rental.NewBulkResult(), shell.NewErrorResult(shell.RetryMetrics{}), rental.ErrEmptyActor
	}

	var result rental.BulkResult

	// Only a failed listing surfaces as an error, so a retry never re-converts a hold
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		result, execErr = h.coordinator.ApproveAllReservations(retryCtx, command.Holder, command.Actor)

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
