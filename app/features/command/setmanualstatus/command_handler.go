// Package setmanualstatus sets or clears the staff override of a catalog item.
//
// A withdrawn item rejects new holds but keeps its open holds; the counters are
// never touched. Setting the status the item already has is idempotent and
// writes no audit entry.
package setmanualstatus

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operations needed by the CommandHandler.
type Engine interface {
	GetItem(ctx context.Context, itemID string) (rental.CatalogItem, error)
	SetManualStatus(ctx context.Context, itemID string, status *rental.ManualStatus, actor string, detail string) (rental.CatalogItem, error)
}

// CommandHandler changes manual statuses.
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

// Handle applies the manual status and returns the updated item.
func (h CommandHandler) Handle(ctx context.Context, command Command) (rental.CatalogItem, shell.HandlerResult, error) {
	var (
		item         rental.CatalogItem
		isIdempotent bool
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		item, isIdempotent, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return rental.CatalogItem{}, shell.NewErrorResult(retryMetrics), err
	}

	if isIdempotent {
		return item, shell.NewIdempotentResult(retryMetrics), nil
	}

	return item, shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (rental.CatalogItem, bool, error) {
	if command.Actor == "" {
		return rental.CatalogItem{}, false, rental.ErrEmptyActor
	}

	current, err := h.engine.GetItem(ctx, command.ItemID)
	if err != nil {
		return rental.CatalogItem{}, false, err
	}

	if command.sameStatusAs(current) {
		return current, true, nil
	}

	item, err := h.engine.SetManualStatus(ctx, command.ItemID, command.Status, command.Actor, command.Detail)

	return item, false, err
}
