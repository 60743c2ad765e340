package rental

import (
	"slices"
	"time"
)

// Status is the derived display status of a catalog item.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusReserved    Status = "RESERVED"
	StatusRented      Status = "RENTED"
	StatusOutOfStock  Status = "OUT_OF_STOCK"
	StatusLost        Status = "LOST"
	StatusMaintenance Status = "MAINTENANCE"
)

// ReservationView is the staff-facing view of the reservation that makes an item RESERVED.
type ReservationView struct {
	HoldID   string    `json:"holdId"`
	Holder   Holder    `json:"holder"`
	Deadline time.Time `json:"deadline"`
}

// Resolution is the outcome of resolving an item's status.
type Resolution struct {
	ItemID            string           `json:"itemId"`
	Status            Status           `json:"status"`
	AvailableCount    int              `json:"availableCount"`
	Quantity          int              `json:"quantity"`
	OpenReservations  int              `json:"openReservations"`
	OpenLoans         int              `json:"openLoans"`
	Reservation       *ReservationView `json:"reservation,omitempty"`
	ReconciliationGap bool             `json:"reconciliationGap"`
}

// Resolve derives the display status of item from its counters and open holds.
//
// Priority:
//
//	manual override (LOST, MAINTENANCE) bypasses the counts
//	any open reservation                -> RESERVED
//	available_count > 0                 -> AVAILABLE (even with open loans)
//	any open loan                       -> RENTED
//	otherwise                           -> OUT_OF_STOCK, flagged as a reconciliation gap
//
// Holds that are closed or belong to another item are ignored.
func Resolve(item CatalogItem, holds Holds) Resolution {
	resolution := Resolution{
		ItemID:         item.ID,
		AvailableCount: item.AvailableCount,
		Quantity:       item.Quantity,
	}

	var reservations Holds
	for _, h := range holds {
		if !h.IsOpen() || h.ItemID != item.ID {
			continue
		}

		switch h.Kind {
		case KindReservation:
			reservations = append(reservations, h)
		case KindLoan:
			resolution.OpenLoans++
		}
	}
	resolution.OpenReservations = len(reservations)

	if item.ManualStatus != nil {
		resolution.Status = Status(*item.ManualStatus)
		return resolution
	}

	switch {
	case len(reservations) > 0:
		first := slices.MinFunc(reservations, func(a, b Hold) int {
			return a.Deadline.Compare(b.Deadline)
		})
		resolution.Status = StatusReserved
		resolution.Reservation = &ReservationView{
			HoldID:   first.ID,
			Holder:   first.Holder,
			Deadline: first.Deadline,
		}

	case item.AvailableCount > 0:
		resolution.Status = StatusAvailable

	case resolution.OpenLoans > 0:
		resolution.Status = StatusRented

	default:
		resolution.Status = StatusOutOfStock
		resolution.ReconciliationGap = true
	}

	return resolution
}
