package rental

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// FailureReason classifies why one hold of a bulk operation failed.
type FailureReason string

const (
	ReasonAlreadyClosed FailureReason = "ALREADY_CLOSED"
	ReasonNotFound      FailureReason = "NOT_FOUND"
	ReasonWrongKind     FailureReason = "WRONG_KIND"
	ReasonExpired       FailureReason = "EXPIRED"
	ReasonOutOfStock    FailureReason = "OUT_OF_STOCK"
	ReasonCanceled      FailureReason = "CANCELED"
	ReasonTransient     FailureReason = "TRANSIENT"
	ReasonInternal      FailureReason = "INTERNAL"
)

// ClassifyFailure maps an operation error to a FailureReason.
func ClassifyFailure(err error) FailureReason {
	switch {
	case errors.Is(err, ErrAlreadyClosed):
		return ReasonAlreadyClosed
	case errors.Is(err, ErrHoldNotFound), errors.Is(err, ErrItemNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrWrongKind):
		return ReasonWrongKind
	case errors.Is(err, ErrReservationExpired):
		return ReasonExpired
	case errors.Is(err, ErrOutOfStock):
		return ReasonOutOfStock
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, ErrTransient):
		return ReasonTransient
	default:
		return ReasonInternal
	}
}

// BulkFailure describes one hold that a bulk operation could not transition.
type BulkFailure struct {
	ItemID  string        `json:"itemId"`
	HoldID  string        `json:"holdId"`
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
}

// BulkResult is the partial-success summary of a bulk operation.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// NewBulkResult returns an empty result with non-nil slices, so it serializes as empty arrays.
func NewBulkResult() BulkResult {
	return BulkResult{
		Succeeded: make([]string, 0),
		Failed:    make([]BulkFailure, 0),
	}
}

// AddSuccess records a successful item.
func (r *BulkResult) AddSuccess(itemID string) {
	r.Succeeded = append(r.Succeeded, itemID)
}

// AddFailure records a failed hold with its classified reason.
func (r *BulkResult) AddFailure(hold Hold, err error) {
	r.Failed = append(r.Failed, BulkFailure{
		ItemID:  hold.ItemID,
		HoldID:  hold.ID,
		Reason:  ClassifyFailure(err),
		Message: err.Error(),
	})
}

// Sort orders successes and failures by item id.
func (r *BulkResult) Sort() {
	slices.Sort(r.Succeeded)
	slices.SortFunc(r.Failed, func(a, b BulkFailure) int {
		if c := strings.Compare(a.ItemID, b.ItemID); c != 0 {
			return c
		}
		return strings.Compare(a.HoldID, b.HoldID)
	})
}

// SucceededCount returns the number of successful items.
func (r BulkResult) SucceededCount() int {
	return len(r.Succeeded)
}

// FailedCount returns the number of failed holds.
func (r BulkResult) FailedCount() int {
	return len(r.Failed)
}
