package shell

import (
	"errors"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// ErrIdempotentOperation marks an operation that found its target state already reached.
var ErrIdempotentOperation = errors.New("idempotent operation - no state change needed")

var domainRejections = []error{
	rental.ErrOutOfStock,
	rental.ErrDuplicateHold,
	rental.ErrHoldNotFound,
	rental.ErrItemNotFound,
	rental.ErrWrongKind,
	rental.ErrAlreadyClosed,
	rental.ErrReservationExpired,
	rental.ErrNotYetExpired,
	rental.ErrItemWithdrawn,
	rental.ErrInvalidHolder,
	rental.ErrEmptyItemID,
	rental.ErrEmptyActor,
	rental.ErrInvalidQuantity,
	rental.ErrInvalidManualStatus,
}

// IsDomainRejection reports whether err is a business rule refusing the request,
// as opposed to an infrastructure failure.
func IsDomainRejection(err error) bool {
	for _, rejection := range domainRejections {
		if errors.Is(err, rejection) {
			return true
		}
	}

	return false
}
