package rental

import (
	"context"
)

// Engine is the full operation set of a rental engine.
// postgresengine and memengine both implement it; consumers usually depend on a narrower subset.
type Engine interface {
	Reserve(ctx context.Context, itemID string, holder Holder) (Hold, error)
	DirectLoan(ctx context.Context, itemID string, holder Holder, actor string) (Hold, error)
	ConvertToLoan(ctx context.Context, holdID string, actor string) (Hold, error)
	Return(ctx context.Context, holdID string, actor string) (Hold, error)
	ReturnByHolder(ctx context.Context, itemID string, holder Holder, actor string) (Hold, error)
	Cancel(ctx context.Context, holdID string, actor string) (Hold, error)
	CancelByHolder(ctx context.Context, itemID string, holder Holder) (Hold, error)
	Expire(ctx context.Context, holdID string) (Hold, error)
	ExpireDue(ctx context.Context, limit uint) (int, error)

	RegisterItem(ctx context.Context, itemID string, name string, quantity int) (CatalogItem, error)
	GetItem(ctx context.Context, itemID string) (CatalogItem, error)
	SetManualStatus(ctx context.Context, itemID string, status *ManualStatus, actor string, detail string) (CatalogItem, error)
	CheckInvariants(ctx context.Context, itemID string) error

	ResolveStatus(ctx context.Context, itemID string) (Resolution, error)
	GetHold(ctx context.Context, holdID string) (Hold, error)
	OpenHoldsForHolder(ctx context.Context, holder Holder) (Holds, error)
	OpenHoldsForItem(ctx context.Context, itemID string) (Holds, error)
	ListAuditLog(ctx context.Context, itemID string, limit uint) (AuditEntries, error)
}
