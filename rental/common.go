package rental

import (
	"errors"
)

var (
	ErrOutOfStock         = errors.New("no copy available to claim")
	ErrDuplicateHold      = errors.New("holder already has an open hold on this item")
	ErrHoldNotFound       = errors.New("hold not found")
	ErrItemNotFound       = errors.New("catalog item not found")
	ErrWrongKind          = errors.New("hold has the wrong kind for this transition")
	ErrAlreadyClosed      = errors.New("hold is already closed")
	ErrReservationExpired = errors.New("reservation expired before it could be converted")
	ErrNotYetExpired      = errors.New("reservation deadline has not passed yet")
	ErrReconciliationGap  = errors.New("available count is zero but no open hold explains it")
	ErrItemWithdrawn      = errors.New("item is withdrawn from circulation by a manual status")
	ErrInvalidHolder      = errors.New("holder must have exactly one of user id or guest name")
	ErrLedgerInvariant    = errors.New("inventory ledger invariant would be violated")
	ErrTransient          = errors.New("transient storage conflict, the operation may be retried")
)

var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrEmptyItemID           = errors.New("item id must not be empty")
	ErrEmptyActor            = errors.New("actor must not be empty")
	ErrInvalidQuantity       = errors.New("quantity must not be negative")
	ErrInvalidManualStatus   = errors.New("manual status must be LOST or MAINTENANCE")
	ErrInvalidDuration       = errors.New("duration must be positive")
	ErrNilClock              = errors.New("clock must not be nil")
	ErrQueryingFailed        = errors.New("querying the rental store failed")
	ErrWritingFailed         = errors.New("writing to the rental store failed")
	ErrScanningFailed        = errors.New("scanning a database row failed")
	ErrBuildingQueryFailed   = errors.New("building the sql query failed")
)

// SystemActor is the actor recorded for transitions the engine performs on its own (expiry).
const SystemActor = "system"
