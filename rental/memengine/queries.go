package memengine

import (
	"context"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// ResolveStatus reclaims the item's overdue reservations and derives its display status.
// A reconciliation gap is logged, not returned.
func (e *Engine) ResolveStatus(ctx context.Context, itemID string) (rental.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return rental.Resolution{}, err
	}

	if itemID == "" {
		return rental.Resolution{}, rental.ErrEmptyItemID
	}

	resolution, entries, err := func() (rental.Resolution, rental.AuditEntries, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if _, itemErr := e.item(itemID); itemErr != nil {
			return rental.Resolution{}, nil, itemErr
		}

		entries, reclaimErr := e.reclaimOverdue(itemID, e.now())
		if reclaimErr != nil {
			return rental.Resolution{}, entries, reclaimErr
		}

		item, _ := e.item(itemID)
		open := e.openHoldsOf(func(h rental.Hold) bool { return h.ItemID == itemID })

		return rental.Resolve(item, open), entries, nil
	}()

	e.publish(ctx, entries...)

	if err != nil {
		return rental.Resolution{}, err
	}

	if resolution.ReconciliationGap {
		e.logWarn(logMsgReconciliationGap, logAttrItemID, itemID)
	}

	return resolution, nil
}

// OpenHoldsForHolder lists the open holds of a holder across all items, nearest deadline first.
func (e *Engine) OpenHoldsForHolder(ctx context.Context, holder rental.Holder) (rental.Holds, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := holder.Validate(); err != nil {
		return nil, err
	}

	key := holder.Key()

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.openHoldsOf(func(h rental.Hold) bool { return h.Holder.Key() == key }), nil
}

// OpenHoldsForItem lists the open holds of an item, nearest deadline first.
func (e *Engine) OpenHoldsForItem(ctx context.Context, itemID string) (rental.Holds, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if itemID == "" {
		return nil, rental.ErrEmptyItemID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.openHoldsOf(func(h rental.Hold) bool { return h.ItemID == itemID }), nil
}

// GetHold returns one hold by id, open or closed.
func (e *Engine) GetHold(ctx context.Context, holdID string) (rental.Hold, error) {
	if err := ctx.Err(); err != nil {
		return rental.Hold{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.hold(holdID)
}
