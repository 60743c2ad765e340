package memengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// Reserve claims one copy of an item for the reservation TTL.
func (e *Engine) Reserve(ctx context.Context, itemID string, holder rental.Holder) (rental.Hold, error) {
	return e.createHold(ctx, itemID, holder, rental.KindReservation, holder.String(), rental.EventReserve)
}

// DirectLoan claims one copy as a loan right away.
func (e *Engine) DirectLoan(ctx context.Context, itemID string, holder rental.Holder, actor string) (rental.Hold, error) {
	if actor == "" {
		return rental.Hold{}, rental.ErrEmptyActor
	}

	return e.createHold(ctx, itemID, holder, rental.KindLoan, actor, rental.EventDirectLoan)
}

func (e *Engine) createHold(
	ctx context.Context,
	itemID string,
	holder rental.Holder,
	kind rental.HoldKind,
	actor string,
	eventType rental.EventType,
) (rental.Hold, error) {
	if err := ctx.Err(); err != nil {
		return rental.Hold{}, err
	}

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

	hold, entries, err := func() (rental.Hold, rental.AuditEntries, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		now := e.now()

		item, itemErr := e.item(itemID)
		if itemErr != nil {
			return rental.Hold{}, nil, itemErr
		}

		entries, reclaimErr := e.reclaimOverdue(itemID, now)
		if reclaimErr != nil {
			return rental.Hold{}, entries, reclaimErr
		}

		if item.IsWithdrawn() {
			return rental.Hold{}, entries, fmt.Errorf("%w: %s is %s", rental.ErrItemWithdrawn, itemID, *item.ManualStatus)
		}

		if _, exists := e.openHoldOfHolder(itemID, holder); exists {
			return rental.Hold{}, entries, fmt.Errorf("%w: %s on %s", rental.ErrDuplicateHold, holder, itemID)
		}

		if _, decErr := e.tryDecrement(itemID, now); decErr != nil {
			if errors.Is(decErr, rental.ErrOutOfStock) {
				signal := rental.BuildAuditEntry(itemID, "", rental.EventDemandSignal, actor, now, "no copy available").
					WithMetadata("holder", holder.Key())
				if appended, auditErr := e.appendAudit(signal); auditErr == nil {
					entries = append(entries, appended)
				}
			}

			return rental.Hold{}, entries, decErr
		}

		hold := rental.Hold{
			ID:        id.String(),
			ItemID:    itemID,
			Kind:      kind,
			Holder:    holder,
			CreatedAt: now,
			Deadline:  e.policy.DeadlineFor(kind, now),
		}
		e.holds[hold.ID] = hold
		e.holdIDs = append(e.holdIDs, hold.ID)

		entry, auditErr := e.appendAudit(rental.HoldAuditEntry(hold, eventType, actor, now, ""))
		if auditErr != nil {
			return rental.Hold{}, entries, auditErr
		}

		return hold, append(entries, entry), nil
	}()

	e.publish(ctx, entries...)

	if err != nil {
		return rental.Hold{}, err
	}

	e.logOperation(string(eventType), logAttrItemID, itemID, logAttrHoldID, hold.ID, logAttrActor, actor)

	return hold, nil
}

// ConvertToLoan turns an open reservation into a loan without touching the ledger.
// An overdue reservation is expired instead and rental.ErrReservationExpired is returned.
func (e *Engine) ConvertToLoan(ctx context.Context, holdID string, actor string) (rental.Hold, error) {
	if err := ctx.Err(); err != nil {
		return rental.Hold{}, err
	}

	if actor == "" {
		return rental.Hold{}, rental.ErrEmptyActor
	}

	expired := false

	hold, entries, err := func() (rental.Hold, rental.AuditEntries, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		now := e.now()

		hold, holdErr := e.hold(holdID)
		if holdErr != nil {
			return rental.Hold{}, nil, holdErr
		}

		if transitionErr := hold.CheckTransition(rental.KindReservation); transitionErr != nil {
			return rental.Hold{}, nil, transitionErr
		}

		if hold.IsExpiredReservation(now) {
			closed, entry, expireErr := e.closeAndRelease(hold, rental.CloseReasonExpired, rental.EventExpire, rental.SystemActor, now)
			if expireErr != nil {
				return rental.Hold{}, nil, expireErr
			}

			expired = true

			return closed, rental.AuditEntries{entry}, nil
		}

		convertedAt := now
		hold.Kind = rental.KindLoan
		hold.ConvertedAt = &convertedAt
		hold.Deadline = e.policy.DeadlineFor(rental.KindLoan, now)
		e.holds[hold.ID] = hold

		entry, auditErr := e.appendAudit(rental.HoldAuditEntry(hold, rental.EventConvert, actor, now, ""))
		if auditErr != nil {
			return rental.Hold{}, nil, auditErr
		}

		return hold, rental.AuditEntries{entry}, nil
	}()

	e.publish(ctx, entries...)

	if err != nil {
		return rental.Hold{}, err
	}

	if expired {
		return hold, fmt.Errorf("%w: %s passed its deadline %s", rental.ErrReservationExpired, holdID, hold.Deadline)
	}

	e.logOperation(string(rental.EventConvert), logAttrHoldID, holdID, logAttrItemID, hold.ItemID, logAttrActor, actor)

	return hold, nil
}

// Return closes an open loan and releases its copy.
func (e *Engine) Return(ctx context.Context, holdID string, actor string) (rental.Hold, error) {
	return e.closeByID(ctx, holdID, rental.KindLoan, rental.CloseReasonReturned, rental.EventReturn, actor)
}

// Cancel withdraws an open reservation and releases its copy.
func (e *Engine) Cancel(ctx context.Context, holdID string, actor string) (rental.Hold, error) {
	return e.closeByID(ctx, holdID, rental.KindReservation, rental.CloseReasonCanceled, rental.EventCancel, actor)
}

// Expire closes one overdue reservation on behalf of the system actor.
func (e *Engine) Expire(ctx context.Context, holdID string) (rental.Hold, error) {
	if err := ctx.Err(); err != nil {
		return rental.Hold{}, err
	}

	hold, entries, err := func() (rental.Hold, rental.AuditEntries, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		now := e.now()

		hold, holdErr := e.hold(holdID)
		if holdErr != nil {
			return rental.Hold{}, nil, holdErr
		}

		if transitionErr := hold.CheckTransition(rental.KindReservation); transitionErr != nil {
			return rental.Hold{}, nil, transitionErr
		}

		if !hold.IsExpiredReservation(now) {
			return rental.Hold{}, nil, fmt.Errorf("%w: %s is due %s", rental.ErrNotYetExpired, holdID, hold.Deadline)
		}

		closed, entry, closeErr := e.closeAndRelease(hold, rental.CloseReasonExpired, rental.EventExpire, rental.SystemActor, now)
		if closeErr != nil {
			return rental.Hold{}, nil, closeErr
		}

		return closed, rental.AuditEntries{entry}, nil
	}()

	e.publish(ctx, entries...)

	return hold, err
}

// ExpireDue expires up to limit overdue reservations (0 means no limit) and returns how many it expired.
func (e *Engine) ExpireDue(ctx context.Context, limit uint) (int, error) {
	e.mu.Lock()
	now := e.now()
	due := e.openHoldsOf(func(h rental.Hold) bool {
		return h.IsExpiredReservation(now)
	})
	e.mu.Unlock()

	if limit > 0 && uint(len(due)) > limit {
		due = due[:limit]
	}

	expiredCount := 0

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

// ReturnByHolder returns the open loan a holder has on an item.
func (e *Engine) ReturnByHolder(ctx context.Context, itemID string, holder rental.Holder, actor string) (rental.Hold, error) {
	return e.closeByHolder(ctx, itemID, holder, rental.KindLoan, rental.CloseReasonReturned, rental.EventReturn, actor)
}

// CancelByHolder cancels the open reservation a holder has on an item.
func (e *Engine) CancelByHolder(ctx context.Context, itemID string, holder rental.Holder) (rental.Hold, error) {
	return e.closeByHolder(ctx, itemID, holder, rental.KindReservation, rental.CloseReasonCanceled, rental.EventCancel, holder.String())
}

func (e *Engine) closeByID(
	ctx context.Context,
	holdID string,
	kind rental.HoldKind,
	reason rental.CloseReason,
	eventType rental.EventType,
	actor string,
) (rental.Hold, error) {
	if err := ctx.Err(); err != nil {
		return rental.Hold{}, err
	}

	if actor == "" {
		return rental.Hold{}, rental.ErrEmptyActor
	}

	closed, entries, err := func() (rental.Hold, rental.AuditEntries, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		hold, holdErr := e.hold(holdID)
		if holdErr != nil {
			return rental.Hold{}, nil, holdErr
		}

		if transitionErr := hold.CheckTransition(kind); transitionErr != nil {
			return rental.Hold{}, nil, transitionErr
		}

		closed, entry, closeErr := e.closeAndRelease(hold, reason, eventType, actor, e.now())
		if closeErr != nil {
			return rental.Hold{}, nil, closeErr
		}

		return closed, rental.AuditEntries{entry}, nil
	}()

	e.publish(ctx, entries...)

	if err != nil {
		return rental.Hold{}, err
	}

	e.logOperation(string(eventType), logAttrHoldID, holdID, logAttrItemID, closed.ItemID, logAttrActor, actor)

	return closed, nil
}

func (e *Engine) closeByHolder(
	ctx context.Context,
	itemID string,
	holder rental.Holder,
	kind rental.HoldKind,
	reason rental.CloseReason,
	eventType rental.EventType,
	actor string,
) (rental.Hold, error) {
	if err := ctx.Err(); err != nil {
		return rental.Hold{}, err
	}

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

	closed, entries, err := func() (rental.Hold, rental.AuditEntries, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		if _, itemErr := e.item(itemID); itemErr != nil {
			return rental.Hold{}, nil, itemErr
		}

		open, found := e.openHoldOfHolder(itemID, holder)
		if !found || open.Kind != kind {
			return rental.Hold{}, nil, fmt.Errorf("%w: no open %s of %s on %s", rental.ErrHoldNotFound, kind, holder, itemID)
		}

		closed, entry, closeErr := e.closeAndRelease(open, reason, eventType, actor, e.now())
		if closeErr != nil {
			return rental.Hold{}, nil, closeErr
		}

		return closed, rental.AuditEntries{entry}, nil
	}()

	e.publish(ctx, entries...)

	if err != nil {
		return rental.Hold{}, err
	}

	e.logOperation(string(eventType), logAttrHoldID, closed.ID, logAttrItemID, itemID, logAttrActor, actor)

	return closed, nil
}
