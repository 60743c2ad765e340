package postgresengine

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/internal/adapters"
)

const (
	exprExcludedName     = "EXCLUDED.name"
	exprExcludedQuantity = "EXCLUDED.quantity"
	exprExcludedUpdated  = "EXCLUDED.updated_at"
	exprShiftAvailable   = "catalog_items.available_count + (EXCLUDED.quantity - catalog_items.quantity)"
)

// RegisterItem creates a catalog item with all copies available, or changes the quantity of an existing one.
// A quantity change shifts available_count by the same delta; shrinking below the number of copies
// currently out fails with rental.ErrLedgerInvariant.
func (e Engine) RegisterItem(ctx context.Context, itemID string, name string, quantity int) (item rental.CatalogItem, err error) {
	observer, ctx := e.observe(ctx, operationRegisterItem, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, nil) }()

	if itemID == "" {
		return rental.CatalogItem{}, rental.ErrEmptyItemID
	}

	if quantity < 0 {
		return rental.CatalogItem{}, rental.ErrInvalidQuantity
	}

	now := e.now()

	upsertStmt := goqu.Dialect(dialectPostgres).
		Insert(tableCatalogItems).
		Rows(goqu.Record{
			colID:             itemID,
			colName:           name,
			colQuantity:       quantity,
			colAvailableCount: quantity,
			colUpdatedAt:      now,
		}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colName:           goqu.L(exprExcludedName),
			colQuantity:       goqu.L(exprExcludedQuantity),
			colAvailableCount: goqu.L(exprShiftAvailable),
			colUpdatedAt:      goqu.L(exprExcludedUpdated),
		})).
		Returning(itemColumns...)

	sqlQuery, buildErr := e.toSQL(ctx, upsertStmt)
	if buildErr != nil {
		return rental.CatalogItem{}, buildErr
	}

	txErr := e.withTx(ctx, func(s *txScope) error {
		rows, queryErr := e.query(ctx, s.tx, sqlQuery, "upsert item")
		if queryErr != nil {
			return queryErr
		}

		return e.scanAll(ctx, rows, func(rows adapters.DBRows) error {
			var scanErr error
			item, scanErr = scanItem(rows)

			return scanErr
		})
	})
	if txErr != nil {
		return rental.CatalogItem{}, txErr
	}

	e.logOperation(ctx, operationRegisterItem, logAttrItemID, itemID, logAttrQuantity, item.Quantity, logAttrAvailableCount, item.AvailableCount)

	return item, nil
}

// GetItem reads a catalog item without taking any lock.
func (e Engine) GetItem(ctx context.Context, itemID string) (item rental.CatalogItem, err error) {
	observer, ctx := e.observe(ctx, operationGetItem, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, nil) }()

	if itemID == "" {
		return rental.CatalogItem{}, rental.ErrEmptyItemID
	}

	return e.selectItem(ctx, e.db, itemID, false)
}

// SetManualStatus sets (status != nil) or clears (status == nil) the staff override of an item.
// While set, no new hold can be created; open holds can still be returned, cancelled or expired.
// Counts are not touched.
func (e Engine) SetManualStatus(
	ctx context.Context,
	itemID string,
	status *rental.ManualStatus,
	actor string,
	detail string,
) (item rental.CatalogItem, err error) {
	observer, ctx := e.observe(ctx, operationSetManualStatus, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, nil) }()

	if itemID == "" {
		return rental.CatalogItem{}, rental.ErrEmptyItemID
	}

	if actor == "" {
		return rental.CatalogItem{}, rental.ErrEmptyActor
	}

	var newStatus any
	toLabel := "NONE"

	if status != nil {
		if _, parseErr := rental.ParseManualStatus(string(*status)); parseErr != nil {
			return rental.CatalogItem{}, parseErr
		}

		newStatus = string(*status)
		toLabel = string(*status)
	}

	now := e.now()

	txErr := e.withTx(ctx, func(s *txScope) error {
		before, lockErr := e.lockItem(ctx, s, itemID)
		if lockErr != nil {
			return lockErr
		}

		fromLabel := "NONE"
		if before.ManualStatus != nil {
			fromLabel = string(*before.ManualStatus)
		}

		updateStmt := goqu.Dialect(dialectPostgres).
			Update(tableCatalogItems).
			Set(goqu.Record{colManualStatus: newStatus, colUpdatedAt: now}).
			Where(goqu.C(colID).Eq(itemID))

		sqlQuery, buildErr := e.toSQL(ctx, updateStmt)
		if buildErr != nil {
			return buildErr
		}

		if _, execErr := e.exec(ctx, s.tx, sqlQuery, "set manual status"); execErr != nil {
			return execErr
		}

		item = before
		item.ManualStatus = status
		item.UpdatedAt = now

		entry := rental.BuildAuditEntry(itemID, "", rental.EventManualStatusChange, actor, now, detail).
			WithMetadata("from", fromLabel).
			WithMetadata("to", toLabel)

		return e.appendAudit(ctx, s, entry)
	})
	if txErr != nil {
		return rental.CatalogItem{}, txErr
	}

	e.logOperation(ctx, operationSetManualStatus, logAttrItemID, itemID, logAttrActor, actor, "manual_status", toLabel)

	return item, nil
}

// CheckInvariants verifies 0 <= available_count <= quantity and
// available_count == quantity - open holds for one item, under the item's row lock.
func (e Engine) CheckInvariants(ctx context.Context, itemID string) (err error) {
	observer, ctx := e.observe(ctx, operationCheckInvariants, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, nil) }()

	return e.withTx(ctx, func(s *txScope) error {
		item, lockErr := e.lockItem(ctx, s, itemID)
		if lockErr != nil {
			return lockErr
		}

		open, selectErr := e.selectHolds(ctx, s.tx, "open holds of item", false, 0,
			goqu.C(colItemID).Eq(itemID),
			goqu.C(colClosedAt).IsNull(),
		)
		if selectErr != nil {
			return selectErr
		}

		if checkErr := item.CheckAgainstOpenHolds(len(open)); checkErr != nil {
			return fmt.Errorf("invariant check of %s: %w", itemID, checkErr)
		}

		return nil
	})
}
