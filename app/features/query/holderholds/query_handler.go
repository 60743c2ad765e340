package holderholds

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operation needed by the QueryHandler.
type Engine interface {
	OpenHoldsForHolder(ctx context.Context, holder rental.Holder) (rental.Holds, error)
}

// QueryHandler lists holds of a holder.
type QueryHandler struct {
	engine Engine
	clock  rental.Clock
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithClock sets the clock used to compute remaining time. Defaults to the system clock.
func WithClock(clock rental.Clock) Option {
	return func(h *QueryHandler) {
		h.clock = clock
	}
}

// NewQueryHandler creates a new QueryHandler with the provided Engine dependency.
func NewQueryHandler(engine Engine, opts ...Option) QueryHandler {
	handler := QueryHandler{
		engine: engine,
		clock:  rental.SystemClock(),
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle reads the open holds of the holder and projects them.
func (h QueryHandler) Handle(ctx context.Context, query Query) (HolderHolds, error) {
	holds, err := h.engine.OpenHoldsForHolder(ctx, query.Holder)
	if err != nil {
		return HolderHolds{}, err
	}

	return ProjectHolderHolds(query.Holder, holds, h.clock.Now()), nil
}
