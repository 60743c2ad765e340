package auditlog

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Engine defines the engine operation needed by the QueryHandler.
type Engine interface {
	ListAuditLog(ctx context.Context, itemID string, limit uint) (rental.AuditEntries, error)
}

// QueryHandler reads audit trails.
type QueryHandler struct {
	engine Engine
}

// NewQueryHandler creates a new QueryHandler with the provided Engine dependency.
func NewQueryHandler(engine Engine) QueryHandler {
	return QueryHandler{
		engine: engine,
	}
}

// Handle reads the entries and projects them into an AuditTrail.
func (h QueryHandler) Handle(ctx context.Context, query Query) (AuditTrail, error) {
	entries, err := h.engine.ListAuditLog(ctx, query.ItemID, query.Limit)
	if err != nil {
		return AuditTrail{}, err
	}

	return ProjectAuditTrail(query.ItemID, entries), nil
}
