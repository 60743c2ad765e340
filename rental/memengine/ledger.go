package memengine

import (
	"fmt"
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// The helpers in this file must be called with e.mu held.

func (e *Engine) item(itemID string) (rental.CatalogItem, error) {
	item, ok := e.items[itemID]
	if !ok {
		return rental.CatalogItem{}, fmt.Errorf("%w: %s", rental.ErrItemNotFound, itemID)
	}

	return item, nil
}

// tryDecrement claims one copy if any is available and the item is not withdrawn.
func (e *Engine) tryDecrement(itemID string, now time.Time) (int, error) {
	item, err := e.item(itemID)
	if err != nil {
		return 0, err
	}

	if item.IsWithdrawn() {
		return 0, fmt.Errorf("%w: %s is %s", rental.ErrItemWithdrawn, itemID, *item.ManualStatus)
	}

	if item.AvailableCount <= 0 {
		return 0, fmt.Errorf("%w: %s", rental.ErrOutOfStock, itemID)
	}

	item.AvailableCount--
	item.UpdatedAt = now
	e.items[itemID] = item

	return item.AvailableCount, nil
}

// increment releases one copy. It never raises available_count above quantity.
func (e *Engine) increment(itemID string, now time.Time) error {
	item, err := e.item(itemID)
	if err != nil {
		return err
	}

	if item.AvailableCount >= item.Quantity {
		return fmt.Errorf("%w: releasing a copy of %s would exceed quantity %d", rental.ErrLedgerInvariant, itemID, item.Quantity)
	}

	item.AvailableCount++
	item.UpdatedAt = now
	e.items[itemID] = item

	return nil
}

func (e *Engine) hold(holdID string) (rental.Hold, error) {
	hold, ok := e.holds[holdID]
	if !ok {
		return rental.Hold{}, fmt.Errorf("%w: %s", rental.ErrHoldNotFound, holdID)
	}

	return hold, nil
}

func (e *Engine) openHoldOfHolder(itemID string, holder rental.Holder) (rental.Hold, bool) {
	key := holder.Key()

	for _, id := range e.holdIDs {
		hold := e.holds[id]
		if hold.IsOpen() && hold.ItemID == itemID && hold.Holder.Key() == key {
			return hold, true
		}
	}

	return rental.Hold{}, false
}

// closeAndRelease closes an open hold, releases its copy and appends the audit entry.
func (e *Engine) closeAndRelease(
	hold rental.Hold,
	reason rental.CloseReason,
	eventType rental.EventType,
	actor string,
	now time.Time,
) (rental.Hold, rental.AuditEntry, error) {
	if !hold.IsOpen() {
		return rental.Hold{}, rental.AuditEntry{}, rental.ErrAlreadyClosed
	}

	if err := e.increment(hold.ItemID, now); err != nil {
		return rental.Hold{}, rental.AuditEntry{}, err
	}

	closedAt := now
	hold.ClosedAt = &closedAt
	hold.CloseReason = reason
	e.holds[hold.ID] = hold

	entry, err := e.appendAudit(rental.HoldAuditEntry(hold, eventType, actor, now, ""))
	if err != nil {
		return rental.Hold{}, rental.AuditEntry{}, err
	}

	return hold, entry, nil
}

// reclaimOverdue expires the overdue open reservations of one item.
func (e *Engine) reclaimOverdue(itemID string, now time.Time) (rental.AuditEntries, error) {
	overdue := e.openHoldsOf(func(h rental.Hold) bool {
		return h.ItemID == itemID && h.IsExpiredReservation(now)
	})

	entries := make(rental.AuditEntries, 0, len(overdue))

	for _, hold := range overdue {
		_, entry, err := e.closeAndRelease(hold, rental.CloseReasonExpired, rental.EventExpire, rental.SystemActor, now)
		if err != nil {
			return entries, err
		}

		entries = append(entries, entry)
	}

	if len(overdue) > 0 {
		e.logInfo(logMsgOverdueReclaimed, logAttrItemID, itemID, logAttrCount, len(overdue))
	}

	return entries, nil
}
