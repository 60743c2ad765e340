// Package returnloan implements returning a lent copy.
//
// Returning a loan that is already closed is an idempotent success: the copy
// is not released a second time and the caller gets the closed hold back.
package returnloan

import (
	"context"
	"errors"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operations needed by the CommandHandler.
type Engine interface {
	Return(ctx context.Context, holdID string, actor string) (rental.Hold, error)
	ReturnByHolder(ctx context.Context, itemID string, holder rental.Holder, actor string) (rental.Hold, error)
	GetHold(ctx context.Context, holdID string) (rental.Hold, error)
}

// CommandHandler returns loans and retries transient storage conflicts.
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

// Handle returns the loan and reports an idempotent result when it was already closed.
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
	if command.byHolder() {
		hold, err := h.engine.ReturnByHolder(ctx, command.ItemID, command.Holder, command.Actor)
		return hold, false, err
	}

	hold, err := h.engine.Return(ctx, command.HoldID, command.Actor)
	if errors.Is(err, rental.ErrAlreadyClosed) {
		closed, getErr := h.engine.GetHold(ctx, command.HoldID)
		return closed, true, getErr
	}

	return hold, false, err
}
