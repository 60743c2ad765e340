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

// selectHolds runs a hold select built from the given conditions.
func (e Engine) selectHolds(
	ctx context.Context,
	q adapters.Querier,
	action string,
	forUpdate bool,
	limit uint,
	conditions ...exp.Expression,
) (rental.Holds, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableHolds).
		Select(holdColumns...).
		Where(conditions...).
		Order(goqu.I(colDeadline).Asc(), goqu.I(colID).Asc())

	if limit > 0 {
		selectStmt = selectStmt.Limit(limit)
	}

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	sqlQuery, buildErr := e.toSQL(ctx, selectStmt)
	if buildErr != nil {
		return nil, buildErr
	}

	rows, queryErr := e.query(ctx, q, sqlQuery, action)
	if queryErr != nil {
		return nil, queryErr
	}

	holds := make(rental.Holds, 0)

	scanErr := e.scanAll(ctx, rows, func(rows adapters.DBRows) error {
		hold, err := scanHold(rows)
		if err != nil {
			return err
		}

		holds = append(holds, hold)

		return nil
	})
	if scanErr != nil {
		return nil, scanErr
	}

	return holds, nil
}

// lockHold locks the item of a hold and then the hold itself.
// The item id of a hold never changes, so reading it before taking any lock is safe.
func (e Engine) lockHold(ctx context.Context, s *txScope, holdID string) (rental.Hold, error) {
	found, findErr := e.selectHolds(ctx, s.tx, "find hold", false, 1, goqu.C(colID).Eq(holdID))
	if findErr != nil {
		return rental.Hold{}, findErr
	}

	if len(found) == 0 {
		return rental.Hold{}, fmt.Errorf("%w: %s", rental.ErrHoldNotFound, holdID)
	}

	if _, lockErr := e.lockItem(ctx, s, found[0].ItemID); lockErr != nil {
		return rental.Hold{}, lockErr
	}

	locked, lockErr := e.selectHolds(ctx, s.tx, "lock hold", true, 1, goqu.C(colID).Eq(holdID))
	if lockErr != nil {
		return rental.Hold{}, lockErr
	}

	if len(locked) == 0 {
		return rental.Hold{}, fmt.Errorf("%w: %s", rental.ErrHoldNotFound, holdID)
	}

	return locked[0], nil
}

// openHoldOfHolder returns the open hold of a holder on an item, locked. The item must be locked already.
func (e Engine) openHoldOfHolder(ctx context.Context, s *txScope, itemID string, holder rental.Holder) (rental.Hold, bool, error) {
	holds, err := e.selectHolds(ctx, s.tx, "open hold of holder", true, 1,
		goqu.C(colItemID).Eq(itemID),
		goqu.C(colHolderKey).Eq(holder.Key()),
		goqu.C(colClosedAt).IsNull(),
	)
	if err != nil {
		return rental.Hold{}, false, err
	}

	if len(holds) == 0 {
		return rental.Hold{}, false, nil
	}

	return holds[0], true, nil
}

func (e Engine) insertHold(ctx context.Context, s *txScope, hold rental.Hold) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(tableHolds).
		Rows(goqu.Record{
			colID:          hold.ID,
			colItemID:      hold.ItemID,
			colKind:        string(hold.Kind),
			colUserID:      nullableString(hold.Holder.UserID),
			colGuestName:   nullableString(hold.Holder.GuestName),
			colHolderKey:   hold.Holder.Key(),
			colCreatedAt:   hold.CreatedAt,
			colDeadline:    hold.Deadline,
			colConvertedAt: nil,
			colClosedAt:    nil,
			colCloseReason: nil,
		})

	sqlQuery, buildErr := e.toSQL(ctx, insertStmt)
	if buildErr != nil {
		return buildErr
	}

	_, execErr := e.exec(ctx, s.tx, sqlQuery, "insert hold")

	return execErr
}

// closeHoldRow marks a locked open hold as closed.
func (e Engine) closeHoldRow(ctx context.Context, s *txScope, hold rental.Hold, reason rental.CloseReason, now time.Time) (rental.Hold, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(tableHolds).
		Set(goqu.Record{
			colClosedAt:    now,
			colCloseReason: string(reason),
		}).
		Where(goqu.C(colID).Eq(hold.ID), goqu.C(colClosedAt).IsNull())

	sqlQuery, buildErr := e.toSQL(ctx, updateStmt)
	if buildErr != nil {
		return rental.Hold{}, buildErr
	}

	rowsAffected, execErr := e.exec(ctx, s.tx, sqlQuery, "close hold")
	if execErr != nil {
		return rental.Hold{}, execErr
	}

	if rowsAffected == 0 {
		return rental.Hold{}, fmt.Errorf("%w: %s", rental.ErrAlreadyClosed, hold.ID)
	}

	closedAt := now
	hold.ClosedAt = &closedAt
	hold.CloseReason = reason

	return hold, nil
}

// convertHoldRow flips a locked open reservation into a loan.
func (e Engine) convertHoldRow(ctx context.Context, s *txScope, hold rental.Hold, now time.Time) (rental.Hold, error) {
	deadline := e.policy.DeadlineFor(rental.KindLoan, now)

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(tableHolds).
		Set(goqu.Record{
			colKind:        string(rental.KindLoan),
			colDeadline:    deadline,
			colConvertedAt: now,
		}).
		Where(
			goqu.C(colID).Eq(hold.ID),
			goqu.C(colKind).Eq(string(rental.KindReservation)),
			goqu.C(colClosedAt).IsNull(),
		)

	sqlQuery, buildErr := e.toSQL(ctx, updateStmt)
	if buildErr != nil {
		return rental.Hold{}, buildErr
	}

	rowsAffected, execErr := e.exec(ctx, s.tx, sqlQuery, "convert hold")
	if execErr != nil {
		return rental.Hold{}, execErr
	}

	if rowsAffected == 0 {
		return rental.Hold{}, fmt.Errorf("%w: %s", rental.ErrAlreadyClosed, hold.ID)
	}

	convertedAt := now
	hold.Kind = rental.KindLoan
	hold.Deadline = deadline
	hold.ConvertedAt = &convertedAt

	return hold, nil
}

// closeAndRelease closes a locked hold, releases its copy and appends the audit entry.
func (e Engine) closeAndRelease(
	ctx context.Context,
	s *txScope,
	hold rental.Hold,
	reason rental.CloseReason,
	eventType rental.EventType,
	actor string,
	now time.Time,
) (rental.Hold, error) {
	closed, closeErr := e.closeHoldRow(ctx, s, hold, reason, now)
	if closeErr != nil {
		return rental.Hold{}, closeErr
	}

	if incErr := e.increment(ctx, s, hold.ItemID, now); incErr != nil {
		return rental.Hold{}, incErr
	}

	if auditErr := e.appendAudit(ctx, s, rental.HoldAuditEntry(closed, eventType, actor, now, "")); auditErr != nil {
		return rental.Hold{}, auditErr
	}

	return closed, nil
}

// reclaimOverdue expires the overdue open reservations of a locked item.
func (e Engine) reclaimOverdue(ctx context.Context, s *txScope, itemID string, now time.Time) (int, error) {
	overdue, selectErr := e.selectHolds(ctx, s.tx, "overdue reservations", true, 0,
		goqu.C(colItemID).Eq(itemID),
		goqu.C(colKind).Eq(string(rental.KindReservation)),
		goqu.C(colClosedAt).IsNull(),
		goqu.C(colDeadline).Lt(now),
	)
	if selectErr != nil {
		return 0, selectErr
	}

	for _, hold := range overdue {
		if _, err := e.closeAndRelease(ctx, s, hold, rental.CloseReasonExpired, rental.EventExpire, rental.SystemActor, now); err != nil {
			return 0, err
		}

		e.incrementCounterContext(ctx, metricHoldsReclaimed, map[string]string{spanAttrOperation: operationLazyReclaim})
	}

	if len(overdue) > 0 {
		e.logOperation(ctx, logMsgOverdueReclaimed, logAttrItemID, itemID, logAttrCount, len(overdue))
	}

	return len(overdue), nil
}
