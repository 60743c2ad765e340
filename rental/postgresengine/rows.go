package postgresengine

import (
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/internal/adapters"
)

var itemColumns = []any{colID, colName, colQuantity, colAvailableCount, colManualStatus, colUpdatedAt}

var holdColumns = []any{
	colID, colItemID, colKind, colUserID, colGuestName,
	colCreatedAt, colDeadline, colConvertedAt, colClosedAt, colCloseReason,
}

var auditColumns = []any{colID, colItemID, colHoldID, colEventType, colActor, colOccurredAt, colDetail, colMetadata}

type itemRow struct {
	id             string
	name           string
	quantity       int
	availableCount int
	manualStatus   *string
	updatedAt      time.Time
}

func scanItem(rows adapters.DBRows) (rental.CatalogItem, error) {
	var r itemRow

	if err := rows.Scan(&r.id, &r.name, &r.quantity, &r.availableCount, &r.manualStatus, &r.updatedAt); err != nil {
		return rental.CatalogItem{}, err
	}

	item := rental.CatalogItem{
		ID:             r.id,
		Name:           r.name,
		Quantity:       r.quantity,
		AvailableCount: r.availableCount,
		UpdatedAt:      r.updatedAt.UTC(),
	}

	if r.manualStatus != nil {
		status := rental.ManualStatus(*r.manualStatus)
		item.ManualStatus = &status
	}

	return item, nil
}

type holdRow struct {
	id          string
	itemID      string
	kind        string
	userID      *string
	guestName   *string
	createdAt   time.Time
	deadline    time.Time
	convertedAt *time.Time
	closedAt    *time.Time
	closeReason *string
}

func scanHold(rows adapters.DBRows) (rental.Hold, error) {
	var r holdRow

	scanErr := rows.Scan(
		&r.id, &r.itemID, &r.kind, &r.userID, &r.guestName,
		&r.createdAt, &r.deadline, &r.convertedAt, &r.closedAt, &r.closeReason,
	)
	if scanErr != nil {
		return rental.Hold{}, scanErr
	}

	hold := rental.Hold{
		ID:          r.id,
		ItemID:      r.itemID,
		Kind:        rental.HoldKind(r.kind),
		CreatedAt:   r.createdAt.UTC(),
		Deadline:    r.deadline.UTC(),
		ConvertedAt: utcOrNil(r.convertedAt),
		ClosedAt:    utcOrNil(r.closedAt),
	}

	if r.userID != nil {
		hold.Holder.UserID = *r.userID
	}

	if r.guestName != nil {
		hold.Holder.GuestName = *r.guestName
	}

	if r.closeReason != nil {
		hold.CloseReason = rental.CloseReason(*r.closeReason)
	}

	return hold, nil
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	utc := t.UTC()

	return &utc
}

// nullableString turns an empty string into SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}

	return s
}
