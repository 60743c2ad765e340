package memengine

import (
	"context"
	"fmt"
	"slices"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// RegisterItem creates a catalog item or changes the quantity of an existing one,
// shifting available_count by the same delta.
func (e *Engine) RegisterItem(ctx context.Context, itemID string, name string, quantity int) (rental.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return rental.CatalogItem{}, err
	}

	if itemID == "" {
		return rental.CatalogItem{}, rental.ErrEmptyItemID
	}

	if quantity < 0 {
		return rental.CatalogItem{}, rental.ErrInvalidQuantity
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	item, exists := e.items[itemID]
	if !exists {
		item = rental.CatalogItem{ID: itemID, AvailableCount: quantity}
	} else {
		item.AvailableCount += quantity - item.Quantity
	}

	item.Name = name
	item.Quantity = quantity
	item.UpdatedAt = now

	if err := item.CheckCounters(); err != nil {
		return rental.CatalogItem{}, err
	}

	e.items[itemID] = item
	e.logOperation("register_item", logAttrItemID, itemID)

	return item, nil
}

// GetItem returns a catalog item.
func (e *Engine) GetItem(ctx context.Context, itemID string) (rental.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return rental.CatalogItem{}, err
	}

	if itemID == "" {
		return rental.CatalogItem{}, rental.ErrEmptyItemID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.item(itemID)
}

// SetManualStatus sets (status != nil) or clears (status == nil) the staff override of an item.
func (e *Engine) SetManualStatus(
	ctx context.Context,
	itemID string,
	status *rental.ManualStatus,
	actor string,
	detail string,
) (rental.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return rental.CatalogItem{}, err
	}

	if itemID == "" {
		return rental.CatalogItem{}, rental.ErrEmptyItemID
	}

	if actor == "" {
		return rental.CatalogItem{}, rental.ErrEmptyActor
	}

	toLabel := "NONE"
	if status != nil {
		if _, err := rental.ParseManualStatus(string(*status)); err != nil {
			return rental.CatalogItem{}, err
		}

		toLabel = string(*status)
	}

	item, entry, err := func() (rental.CatalogItem, rental.AuditEntry, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		item, itemErr := e.item(itemID)
		if itemErr != nil {
			return rental.CatalogItem{}, rental.AuditEntry{}, itemErr
		}

		fromLabel := "NONE"
		if item.ManualStatus != nil {
			fromLabel = string(*item.ManualStatus)
		}

		now := e.now()
		item.ManualStatus = status
		item.UpdatedAt = now
		e.items[itemID] = item

		entry, auditErr := e.appendAudit(
			rental.BuildAuditEntry(itemID, "", rental.EventManualStatusChange, actor, now, detail).
				WithMetadata("from", fromLabel).
				WithMetadata("to", toLabel),
		)

		return item, entry, auditErr
	}()
	if err != nil {
		return rental.CatalogItem{}, err
	}

	e.publish(ctx, entry)
	e.logOperation("set_manual_status", logAttrItemID, itemID, logAttrActor, actor)

	return item, nil
}

// CheckInvariants verifies the counters of one item against its open holds.
func (e *Engine) CheckInvariants(ctx context.Context, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	item, err := e.item(itemID)
	if err != nil {
		return err
	}

	open := e.openHoldsOf(func(h rental.Hold) bool { return h.ItemID == itemID })
	if checkErr := item.CheckAgainstOpenHolds(len(open)); checkErr != nil {
		return fmt.Errorf("invariant check of %s: %w", itemID, checkErr)
	}

	return nil
}

// ListAuditLog returns the audit entries of an item, newest first. A limit of 0 returns all of them.
func (e *Engine) ListAuditLog(ctx context.Context, itemID string, limit uint) (rental.AuditEntries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if itemID == "" {
		return nil, rental.ErrEmptyItemID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entries := make(rental.AuditEntries, 0)

	for i := len(e.audit) - 1; i >= 0; i-- {
		if e.audit[i].ItemID == itemID {
			entries = append(entries, e.audit[i])
		}
	}

	slices.SortStableFunc(entries, func(a, b rental.AuditEntry) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})

	if limit > 0 && uint(len(entries)) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}
