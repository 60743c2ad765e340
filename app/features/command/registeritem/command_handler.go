// Package registeritem seeds or resizes catalog items.
package registeritem

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/shared/shell"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operations needed by the CommandHandler.
type Engine interface {
	RegisterItem(ctx context.Context, itemID string, name string, quantity int) (rental.CatalogItem, error)
}

// CommandHandler registers catalog items.
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

// Handle registers the item. Shrinking below the number of open holds fails with rental.ErrLedgerInvariant.
func (h CommandHandler) Handle(ctx context.Context, command Command) (rental.CatalogItem, shell.HandlerResult, error) {
	var item rental.CatalogItem

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		item, execErr = h.engine.RegisterItem(retryCtx, command.ItemID, command.Name, command.Quantity)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return rental.CatalogItem{}, shell.NewErrorResult(retryMetrics), err
	}

	return item, shell.NewSuccessResult(retryMetrics), nil
}
