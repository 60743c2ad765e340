package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Reserve claims one copy of an item for 30 minutes (the configured reservation TTL).
func (e Engine) Reserve(ctx context.Context, itemID string, holder rental.Holder) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationReserve, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, map[string]string{spanAttrHoldID: hold.ID}) }()

	return e.createHold(ctx, itemID, holder, rental.KindReservation, holder.String(), rental.EventReserve)
}

// DirectLoan claims one copy as a loan right away, without a reservation (staff and kiosk flow).
func (e Engine) DirectLoan(ctx context.Context, itemID string, holder rental.Holder, actor string) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationDirectLoan, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, map[string]string{spanAttrHoldID: hold.ID}) }()

	if actor == "" {
		return rental.Hold{}, rental.ErrEmptyActor
	}

	return e.createHold(ctx, itemID, holder, rental.KindLoan, actor, rental.EventDirectLoan)
}

func (e Engine) createHold(
	ctx context.Context,
	itemID string,
	holder rental.Holder,
	kind rental.HoldKind,
	actor string,
	eventType rental.EventType,
) (rental.Hold, error) {
	if itemID == "" {
		return rental.Hold{}, rental.ErrEmptyItemID
	}

	holder, holderErr := holder.Normalized()
	if holderErr != nil {
		return rental.Hold{}, holderErr
	}

	id, idErr := uuid.NewV7()
	if idErr != nil {
		return rental.Hold{}, errors.Join(rental.ErrWritingFailed, idErr)
	}

	now := e.now()
	hold := rental.Hold{
		ID:        id.String(),
		ItemID:    itemID,
		Kind:      kind,
		Holder:    holder,
		CreatedAt: now,
		Deadline:  e.policy.DeadlineFor(kind, now),
	}

	// A rejection after the lazy reclaim still commits the reclaim.
	var rejected error

	txErr := e.withTx(ctx, func(s *txScope) error {
		item, lockErr := e.lockItem(ctx, s, itemID)
		if lockErr != nil {
			return lockErr
		}

		if _, reclaimErr := e.reclaimOverdue(ctx, s, itemID, now); reclaimErr != nil {
			return reclaimErr
		}

		if item.IsWithdrawn() {
			rejected = fmt.Errorf("%w: %s is %s", rental.ErrItemWithdrawn, itemID, *item.ManualStatus)
			return nil
		}

		_, exists, existsErr := e.openHoldOfHolder(ctx, s, itemID, holder)
		if existsErr != nil {
			return existsErr
		}

		if exists {
			rejected = fmt.Errorf("%w: %s on %s", rental.ErrDuplicateHold, holder, itemID)
			return nil
		}

		remaining, decErr := e.tryDecrement(ctx, s, itemID, now)
		if decErr != nil {
			return decErr
		}

		if insertErr := e.insertHold(ctx, s, hold); insertErr != nil {
			return insertErr
		}

		e.recordValueMetricsContext(ctx, metricAvailableCount, float64(remaining), map[string]string{labelItemID: itemID})

		return e.appendAudit(ctx, s, rental.HoldAuditEntry(hold, eventType, actor, now, ""))
	})

	if txErr != nil {
		if errors.Is(txErr, rental.ErrOutOfStock) {
			e.recordDemandSignal(ctx, itemID, holder, actor)
		}

		return rental.Hold{}, txErr
	}

	if rejected != nil {
		return rental.Hold{}, rejected
	}

	e.logOperation(ctx, string(eventType),
		logAttrItemID, itemID,
		logAttrHoldID, hold.ID,
		logAttrHolder, holder.Key(),
		logAttrActor, actor,
	)

	return hold, nil
}

// ConvertToLoan turns an open reservation into a loan. The copy stays claimed, so the ledger is untouched.
// A reservation past its deadline is expired and committed instead, and rental.ErrReservationExpired is returned.
func (e Engine) ConvertToLoan(ctx context.Context, holdID string, actor string) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationConvertToLoan, map[string]string{spanAttrHoldID: holdID})
	defer func() { observer.finish(err, map[string]string{spanAttrItemID: hold.ItemID}) }()

	if actor == "" {
		return rental.Hold{}, rental.ErrEmptyActor
	}

	now := e.now()
	expired := false

	txErr := e.withTx(ctx, func(s *txScope) error {
		locked, lockErr := e.lockHold(ctx, s, holdID)
		if lockErr != nil {
			return lockErr
		}

		if transitionErr := locked.CheckTransition(rental.KindReservation); transitionErr != nil {
			return transitionErr
		}

		if locked.IsExpiredReservation(now) {
			closed, expireErr := e.closeAndRelease(ctx, s, locked, rental.CloseReasonExpired, rental.EventExpire, rental.SystemActor, now)
			if expireErr != nil {
				return expireErr
			}

			hold = closed
			expired = true

			return nil
		}

		converted, convertErr := e.convertHoldRow(ctx, s, locked, now)
		if convertErr != nil {
			return convertErr
		}

		hold = converted

		return e.appendAudit(ctx, s, rental.HoldAuditEntry(converted, rental.EventConvert, actor, now, ""))
	})

	if txErr != nil {
		return rental.Hold{}, txErr
	}

	if expired {
		return hold, fmt.Errorf("%w: %s passed its deadline %s", rental.ErrReservationExpired, holdID, hold.Deadline)
	}

	e.logOperation(ctx, string(rental.EventConvert), logAttrHoldID, holdID, logAttrItemID, hold.ItemID, logAttrActor, actor)

	return hold, nil
}

// Return closes an open loan and releases its copy. Returning twice yields rental.ErrAlreadyClosed
// and releases nothing.
func (e Engine) Return(ctx context.Context, holdID string, actor string) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationReturn, map[string]string{spanAttrHoldID: holdID})
	defer func() { observer.finish(err, map[string]string{spanAttrItemID: hold.ItemID}) }()

	return e.closeByID(ctx, holdID, rental.KindLoan, rental.CloseReasonReturned, rental.EventReturn, actor)
}

// Cancel withdraws an open reservation and releases its copy.
func (e Engine) Cancel(ctx context.Context, holdID string, actor string) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationCancel, map[string]string{spanAttrHoldID: holdID})
	defer func() { observer.finish(err, map[string]string{spanAttrItemID: hold.ItemID}) }()

	return e.closeByID(ctx, holdID, rental.KindReservation, rental.CloseReasonCanceled, rental.EventCancel, actor)
}

func (e Engine) closeByID(
	ctx context.Context,
	holdID string,
	kind rental.HoldKind,
	reason rental.CloseReason,
	eventType rental.EventType,
	actor string,
) (rental.Hold, error) {
	if actor == "" {
		return rental.Hold{}, rental.ErrEmptyActor
	}

	now := e.now()

	var closed rental.Hold

	txErr := e.withTx(ctx, func(s *txScope) error {
		locked, lockErr := e.lockHold(ctx, s, holdID)
		if lockErr != nil {
			return lockErr
		}

		if transitionErr := locked.CheckTransition(kind); transitionErr != nil {
			return transitionErr
		}

		var closeErr error
		closed, closeErr = e.closeAndRelease(ctx, s, locked, reason, eventType, actor, now)

		return closeErr
	})

	if txErr != nil {
		return rental.Hold{}, txErr
	}

	e.logOperation(ctx, string(eventType), logAttrHoldID, holdID, logAttrItemID, closed.ItemID, logAttrActor, actor)

	return closed, nil
}

// ReturnByHolder returns the open loan a holder has on an item (kiosk flow).
func (e Engine) ReturnByHolder(ctx context.Context, itemID string, holder rental.Holder, actor string) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationReturnByHolder, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, map[string]string{spanAttrHoldID: hold.ID}) }()

	return e.closeByHolder(ctx, itemID, holder, rental.KindLoan, rental.CloseReasonReturned, rental.EventReturn, actor)
}

// CancelByHolder cancels the open reservation a holder has on an item.
func (e Engine) CancelByHolder(ctx context.Context, itemID string, holder rental.Holder) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationCancelByHolder, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, map[string]string{spanAttrHoldID: hold.ID}) }()

	return e.closeByHolder(ctx, itemID, holder, rental.KindReservation, rental.CloseReasonCanceled, rental.EventCancel, holder.String())
}

func (e Engine) closeByHolder(
	ctx context.Context,
	itemID string,
	holder rental.Holder,
	kind rental.HoldKind,
	reason rental.CloseReason,
	eventType rental.EventType,
	actor string,
) (rental.Hold, error) {
	if itemID == "" {
		return rental.Hold{}, rental.ErrEmptyItemID
	}

	holder, holderErr := holder.Normalized()
	if holderErr != nil {
		return rental.Hold{}, holderErr
	}

	if actor == "" {
		return rental.Hold{}, rental.ErrEmptyActor
	}

	now := e.now()

	var closed rental.Hold

	txErr := e.withTx(ctx, func(s *txScope) error {
		if _, lockErr := e.lockItem(ctx, s, itemID); lockErr != nil {
			return lockErr
		}

		open, found, findErr := e.openHoldOfHolder(ctx, s, itemID, holder)
		if findErr != nil {
			return findErr
		}

		if !found || open.Kind != kind {
			return fmt.Errorf("%w: no open %s of %s on %s", rental.ErrHoldNotFound, kind, holder, itemID)
		}

		var closeErr error
		closed, closeErr = e.closeAndRelease(ctx, s, open, reason, eventType, actor, now)

		return closeErr
	})

	if txErr != nil {
		return rental.Hold{}, txErr
	}

	e.logOperation(ctx, string(eventType), logAttrHoldID, closed.ID, logAttrItemID, itemID, logAttrActor, actor)

	return closed, nil
}

// Expire closes one overdue reservation on behalf of the system actor.
// The deadline is re-checked under the row lock, so a concurrent convert or cancel wins cleanly.
func (e Engine) Expire(ctx context.Context, holdID string) (hold rental.Hold, err error) {
	observer, ctx := e.observe(ctx, operationExpire, map[string]string{spanAttrHoldID: holdID})
	defer func() { observer.finish(err, map[string]string{spanAttrItemID: hold.ItemID}) }()

	now := e.now()

	txErr := e.withTx(ctx, func(s *txScope) error {
		locked, lockErr := e.lockHold(ctx, s, holdID)
		if lockErr != nil {
			return lockErr
		}

		if transitionErr := locked.CheckTransition(rental.KindReservation); transitionErr != nil {
			return transitionErr
		}

		if !locked.IsExpiredReservation(now) {
			return fmt.Errorf("%w: %s is due %s", rental.ErrNotYetExpired, holdID, locked.Deadline)
		}

		var closeErr error
		hold, closeErr = e.closeAndRelease(ctx, s, locked, rental.CloseReasonExpired, rental.EventExpire, rental.SystemActor, now)

		return closeErr
	})

	if txErr != nil {
		return rental.Hold{}, txErr
	}

	return hold, nil
}

// ExpireDue expires up to limit overdue reservations, each in its own transaction,
// and returns how many it expired. Holds that were closed or converted in the meantime are skipped.
func (e Engine) ExpireDue(ctx context.Context, limit uint) (expiredCount int, err error) {
	observer, ctx := e.observe(ctx, operationExpireDue, nil)
	defer func() { observer.finish(err, map[string]string{logAttrCount: fmt.Sprintf("%d", expiredCount)}) }()

	now := e.now()

	due, selectErr := e.selectHolds(ctx, e.db, "due reservations", false, limit,
		goqu.C(colKind).Eq(string(rental.KindReservation)),
		goqu.C(colClosedAt).IsNull(),
		goqu.C(colDeadline).Lt(now),
	)
	if selectErr != nil {
		return 0, selectErr
	}

	var errs []error

	for _, hold := range due {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}

		_, expireErr := e.Expire(ctx, hold.ID)

		switch {
		case expireErr == nil:
			expiredCount++
			e.incrementCounterContext(ctx, metricHoldsReclaimed, map[string]string{spanAttrOperation: operationExpireDue})
		case errors.Is(expireErr, rental.ErrAlreadyClosed),
			errors.Is(expireErr, rental.ErrHoldNotFound),
			errors.Is(expireErr, rental.ErrWrongKind),
			errors.Is(expireErr, rental.ErrNotYetExpired):
			continue
		default:
			errs = append(errs, expireErr)
		}
	}

	return expiredCount, errors.Join(errs...)
}
