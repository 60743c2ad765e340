package rental

import (
	"fmt"
	"time"
)

// ManualStatus is a staff-set override that withdraws an item from circulation.
type ManualStatus string

const (
	ManualStatusLost        ManualStatus = "LOST"
	ManualStatusMaintenance ManualStatus = "MAINTENANCE"
)

// ParseManualStatus validates a manual status string.
func ParseManualStatus(s string) (ManualStatus, error) {
	switch ManualStatus(s) {
	case ManualStatusLost, ManualStatusMaintenance:
		return ManualStatus(s), nil
	default:
		return "", ErrInvalidManualStatus
	}
}

// CatalogItem is one game title with its copy counters.
// Descriptive metadata lives with the catalog collaborator, only Name is kept for display.
type CatalogItem struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Quantity       int           `json:"quantity"`
	AvailableCount int           `json:"availableCount"`
	ManualStatus   *ManualStatus `json:"manualStatus,omitempty"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// IsWithdrawn reports whether a manual status currently blocks new holds.
func (i CatalogItem) IsWithdrawn() bool {
	return i.ManualStatus != nil
}

// CheckCounters verifies 0 <= AvailableCount <= Quantity.
func (i CatalogItem) CheckCounters() error {
	if i.AvailableCount < 0 || i.AvailableCount > i.Quantity {
		return fmt.Errorf("%w: item %s has available_count %d of quantity %d",
			ErrLedgerInvariant, i.ID, i.AvailableCount, i.Quantity)
	}

	return nil
}

// CheckAgainstOpenHolds verifies AvailableCount == Quantity - openHolds on top of CheckCounters.
func (i CatalogItem) CheckAgainstOpenHolds(openHolds int) error {
	if err := i.CheckCounters(); err != nil {
		return err
	}

	if i.AvailableCount != i.Quantity-openHolds {
		return fmt.Errorf("%w: item %s has available_count %d, quantity %d and %d open holds",
			ErrReconciliationGap, i.ID, i.AvailableCount, i.Quantity, openHolds)
	}

	return nil
}
