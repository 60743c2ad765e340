package itemstatus

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operation needed by the QueryHandler.
type Engine interface {
	ResolveStatus(ctx context.Context, itemID string) (rental.Resolution, error)
}

// QueryHandler resolves item statuses.
type QueryHandler struct {
	engine Engine
}

// NewQueryHandler creates a new QueryHandler with the provided Engine dependency.
func NewQueryHandler(engine Engine) QueryHandler {
	return QueryHandler{
		engine: engine,
	}
}

// Handle resolves the status of the queried item.
func (h QueryHandler) Handle(ctx context.Context, query Query) (rental.Resolution, error) {
	if query.ItemID == "" {
		return rental.Resolution{}, rental.ErrEmptyItemID
	}

	return h.engine.ResolveStatus(ctx, query.ItemID)
}
