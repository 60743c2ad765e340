package postgresengine

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/internal/adapters"
)

// selectItem reads one catalog item, optionally taking its row lock.
func (e Engine) selectItem(ctx context.Context, q adapters.Querier, itemID string, forUpdate bool) (rental.CatalogItem, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableCatalogItems).
		Select(itemColumns...).
		Where(goqu.C(colID).Eq(itemID))

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	sqlQuery, buildErr := e.toSQL(ctx, selectStmt)
	if buildErr != nil {
		return rental.CatalogItem{}, buildErr
	}

	rows, queryErr := e.query(ctx, q, sqlQuery, "select item")
	if queryErr != nil {
		return rental.CatalogItem{}, queryErr
	}

	var items []rental.CatalogItem

	scanErr := e.scanAll(ctx, rows, func(rows adapters.DBRows) error {
		item, err := scanItem(rows)
		if err != nil {
			return err
		}

		items = append(items, item)

		return nil
	})
	if scanErr != nil {
		return rental.CatalogItem{}, scanErr
	}

	if len(items) == 0 {
		return rental.CatalogItem{}, fmt.Errorf("%w: %s", rental.ErrItemNotFound, itemID)
	}

	return items[0], nil
}

// lockItem takes the row lock of an item. Every mutating operation locks the item before any hold,
// which keeps the lock order the same for all operations.
func (e Engine) lockItem(ctx context.Context, s *txScope, itemID string) (rental.CatalogItem, error) {
	return e.selectItem(ctx, s.tx, itemID, true)
}

// tryDecrement claims one copy with a single guarded UPDATE.
// When no row qualifies, a follow-up read in the same transaction tells why.
func (e Engine) tryDecrement(ctx context.Context, s *txScope, itemID string, now time.Time) (int, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(tableCatalogItems).
		Set(goqu.Record{
			colAvailableCount: goqu.L(exprDecrementAvailable),
			colUpdatedAt:      now,
		}).
		Where(
			goqu.C(colID).Eq(itemID),
			goqu.C(colAvailableCount).Gt(0),
			goqu.C(colManualStatus).IsNull(),
		).
		Returning(colAvailableCount)

	sqlQuery, buildErr := e.toSQL(ctx, updateStmt)
	if buildErr != nil {
		return 0, buildErr
	}

	rows, queryErr := e.query(ctx, s.tx, sqlQuery, "ledger decrement")
	if queryErr != nil {
		return 0, queryErr
	}

	remaining := -1

	scanErr := e.scanAll(ctx, rows, func(rows adapters.DBRows) error {
		return rows.Scan(&remaining)
	})
	if scanErr != nil {
		return 0, scanErr
	}

	if remaining >= 0 {
		return remaining, nil
	}

	item, selectErr := e.selectItem(ctx, s.tx, itemID, false)
	if selectErr != nil {
		return 0, selectErr
	}

	if item.IsWithdrawn() {
		return 0, fmt.Errorf("%w: %s is %s", rental.ErrItemWithdrawn, itemID, *item.ManualStatus)
	}

	return 0, fmt.Errorf("%w: %s", rental.ErrOutOfStock, itemID)
}

// increment releases one copy. The guard keeps available_count at or below quantity;
// a release that would exceed it aborts the transaction instead of clamping.
func (e Engine) increment(ctx context.Context, s *txScope, itemID string, now time.Time) error {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(tableCatalogItems).
		Set(goqu.Record{
			colAvailableCount: goqu.L(exprIncrementAvailable),
			colUpdatedAt:      now,
		}).
		Where(
			goqu.C(colID).Eq(itemID),
			goqu.C(colAvailableCount).Lt(goqu.I(colQuantity)),
		)

	sqlQuery, buildErr := e.toSQL(ctx, updateStmt)
	if buildErr != nil {
		return buildErr
	}

	rowsAffected, execErr := e.exec(ctx, s.tx, sqlQuery, "ledger increment")
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: releasing a copy of %s would exceed its quantity", rental.ErrLedgerInvariant, itemID)
	}

	return nil
}
