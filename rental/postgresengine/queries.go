package postgresengine

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// ResolveStatus reclaims the item's overdue reservations and derives its display status.
// A reconciliation gap is logged and counted but not returned as an error.
func (e Engine) ResolveStatus(ctx context.Context, itemID string) (resolution rental.Resolution, err error) {
	observer, ctx := e.observe(ctx, operationResolveStatus, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, map[string]string{"status": string(resolution.Status)}) }()

	if itemID == "" {
		return rental.Resolution{}, rental.ErrEmptyItemID
	}

	now := e.now()

	txErr := e.withTx(ctx, func(s *txScope) error {
		if _, lockErr := e.lockItem(ctx, s, itemID); lockErr != nil {
			return lockErr
		}

		if _, reclaimErr := e.reclaimOverdue(ctx, s, itemID, now); reclaimErr != nil {
			return reclaimErr
		}

		item, selectErr := e.selectItem(ctx, s.tx, itemID, false)
		if selectErr != nil {
			return selectErr
		}

		open, holdsErr := e.selectHolds(ctx, s.tx, "open holds of item", false, 0,
			goqu.C(colItemID).Eq(itemID),
			goqu.C(colClosedAt).IsNull(),
		)
		if holdsErr != nil {
			return holdsErr
		}

		resolution = rental.Resolve(item, open)

		return nil
	})
	if txErr != nil {
		return rental.Resolution{}, txErr
	}

	if resolution.ReconciliationGap {
		e.logWarn(ctx, logMsgReconciliationGap,
			logAttrItemID, itemID,
			logAttrAvailableCount, resolution.AvailableCount,
			logAttrQuantity, resolution.Quantity,
		)
		e.incrementCounterContext(ctx, metricReconciliationGaps, map[string]string{labelItemID: itemID})
	}

	return resolution, nil
}

// OpenHoldsForHolder lists the open holds of a holder across all items, nearest deadline first.
func (e Engine) OpenHoldsForHolder(ctx context.Context, holder rental.Holder) (holds rental.Holds, err error) {
	observer, ctx := e.observe(ctx, operationHolderHolds, nil)
	defer func() { observer.finish(err, nil) }()

	if validateErr := holder.Validate(); validateErr != nil {
		return nil, validateErr
	}

	return e.selectHolds(ctx, e.db, "open holds of holder", false, 0,
		goqu.C(colHolderKey).Eq(holder.Key()),
		goqu.C(colClosedAt).IsNull(),
	)
}

// OpenHoldsForItem lists the open holds of an item, nearest deadline first.
func (e Engine) OpenHoldsForItem(ctx context.Context, itemID string) (holds rental.Holds, err error) {
	observer, ctx := e.observe(ctx, operationItemHolds, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, nil) }()

	if itemID == "" {
		return nil, rental.ErrEmptyItemID
	}

	return e.selectHolds(ctx, e.db, "open holds of item", false, 0,
		goqu.C(colItemID).Eq(itemID),
		goqu.C(colClosedAt).IsNull(),
	)
}

// GetHold returns one hold by id, open or closed.
func (e Engine) GetHold(ctx context.Context, holdID string) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationGetHold, map[string]string{spanAttrHoldID: holdID})
	defer func() { observer.finish(err, nil) }()

	found, selectErr := e.selectHolds(ctx, e.db, "find hold", false, 1, goqu.C(colID).Eq(holdID))
	if selectErr != nil {
		return rental.Hold{}, selectErr
	}

	if len(found) == 0 {
		return rental.Hold{}, fmt.Errorf("%w: %s", rental.ErrHoldNotFound, holdID)
	}

	return found[0], nil
}
