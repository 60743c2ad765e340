package holderholds

import (
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// ProjectHolderHolds builds the HolderHolds of holder as seen at now.
// Closed holds are skipped; the order of holds is kept.
func ProjectHolderHolds(holder rental.Holder, holds rental.Holds, now time.Time) HolderHolds {
	result := HolderHolds{
		HolderKey: holder.Key(),
		Holds:     make([]HoldInfo, 0, len(holds)),
	}

	for _, hold := range holds.Open() {
		remaining := hold.Deadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}

		result.Holds = append(result.Holds, HoldInfo{
			HoldID:        hold.ID,
			ItemID:        hold.ItemID,
			Kind:          hold.Kind,
			CreatedAt:     hold.CreatedAt,
			Deadline:      hold.Deadline,
			RemainingSecs: int64(remaining / time.Second),
			Overdue:       hold.IsOverdue(now),
		})

		switch hold.Kind {
		case rental.KindReservation:
			result.Reservations++
		case rental.KindLoan:
			result.Loans++
		}
	}

	result.Count = len(result.Holds)

	return result
}
