package rental

import (
	"strings"
	"time"
)

// HoldKind distinguishes a short reservation from an active loan.
type HoldKind string

const (
	KindReservation HoldKind = "RESERVATION"
	KindLoan        HoldKind = "LOAN"
)

const (
	// DefaultReservationTTL is how long a reservation ("dibs") keeps a copy before it expires.
	DefaultReservationTTL = 30 * time.Minute

	// DefaultLoanPeriod is the loan duration for guest and manual loans.
	DefaultLoanPeriod = 7 * 24 * time.Hour
)

// CloseReason records which transition closed a hold.
type CloseReason string

const (
	CloseReasonReturned CloseReason = "RETURNED"
	CloseReasonCanceled CloseReason = "CANCELED"
	CloseReasonExpired  CloseReason = "EXPIRED"
)

const (
	holderKeyUserPrefix  = "user:"
	holderKeyGuestPrefix = "guest:"
)

// Holder identifies who owns a hold: a registered user or a free-text guest, never both.
type Holder struct {
	UserID    string `json:"userId,omitempty"`
	GuestName string `json:"guestName,omitempty"`
}

// UserHolder builds a Holder for a registered user.
func UserHolder(userID string) Holder {
	return Holder{UserID: userID}
}

// GuestHolder builds a Holder for a walk-up guest.
func GuestHolder(name string) Holder {
	return Holder{GuestName: name}
}

// Validate returns ErrInvalidHolder unless exactly one of UserID and GuestName is set.
func (h Holder) Validate() error {
	hasUser := strings.TrimSpace(h.UserID) != ""
	hasGuest := strings.TrimSpace(h.GuestName) != ""

	if hasUser == hasGuest {
		return ErrInvalidHolder
	}

	return nil
}

// Normalized returns the holder with surrounding whitespace removed from both fields,
// or ErrInvalidHolder unless exactly one of them is left.
func (h Holder) Normalized() (Holder, error) {
	normalized := Holder{
		UserID:    strings.TrimSpace(h.UserID),
		GuestName: strings.TrimSpace(h.GuestName),
	}

	if err := normalized.Validate(); err != nil {
		return Holder{}, err
	}

	return normalized, nil
}

// IsGuest reports whether the holder is a guest.
func (h Holder) IsGuest() bool {
	return strings.TrimSpace(h.UserID) == ""
}

// Key returns the canonical identity used for the one-open-hold-per-item rule.
// Guest names are compared case-insensitively and without surrounding whitespace.
func (h Holder) Key() string {
	if !h.IsGuest() {
		return holderKeyUserPrefix + strings.TrimSpace(h.UserID)
	}

	return holderKeyGuestPrefix + strings.ToLower(strings.TrimSpace(h.GuestName))
}

// String returns a display name for logs and audit actors.
func (h Holder) String() string {
	if !h.IsGuest() {
		return strings.TrimSpace(h.UserID)
	}

	return strings.TrimSpace(h.GuestName)
}

// Hold is a single unit claim on a catalog item.
type Hold struct {
	ID          string      `json:"id"`
	ItemID      string      `json:"itemId"`
	Kind        HoldKind    `json:"kind"`
	Holder      Holder      `json:"holder"`
	CreatedAt   time.Time   `json:"createdAt"`
	Deadline    time.Time   `json:"deadline"`
	ConvertedAt *time.Time  `json:"convertedAt,omitempty"`
	ClosedAt    *time.Time  `json:"closedAt,omitempty"`
	CloseReason CloseReason `json:"closeReason,omitempty"`
}

// IsOpen reports whether the hold still removes a copy from the available pool.
func (h Hold) IsOpen() bool {
	return h.ClosedAt == nil
}

// IsOverdue reports whether an open hold is past its deadline at now.
func (h Hold) IsOverdue(now time.Time) bool {
	return h.IsOpen() && now.After(h.Deadline)
}

// IsExpiredReservation reports whether the hold is an open reservation past its deadline.
func (h Hold) IsExpiredReservation(now time.Time) bool {
	return h.Kind == KindReservation && h.IsOverdue(now)
}

// CheckTransition validates that an open hold of the wanted kind is being transitioned.
// A closed hold always yields ErrAlreadyClosed, so double submissions stay benign.
func (h Hold) CheckTransition(wanted HoldKind) error {
	if !h.IsOpen() {
		return ErrAlreadyClosed
	}

	if h.Kind != wanted {
		return ErrWrongKind
	}

	return nil
}

// Holds is a collection of holds.
type Holds []Hold

// Open returns the holds that are still open.
func (hs Holds) Open() Holds {
	open := make(Holds, 0, len(hs))
	for _, h := range hs {
		if h.IsOpen() {
			open = append(open, h)
		}
	}

	return open
}

// OfKind returns the holds of the given kind.
func (hs Holds) OfKind(kind HoldKind) Holds {
	filtered := make(Holds, 0, len(hs))
	for _, h := range hs {
		if h.Kind == kind {
			filtered = append(filtered, h)
		}
	}

	return filtered
}

// HoldPolicy carries the deadlines applied when holds are created or converted.
type HoldPolicy struct {
	ReservationTTL time.Duration
	LoanPeriod     time.Duration
}

// DefaultHoldPolicy returns the 30 minute reservation and 7 day loan policy.
func DefaultHoldPolicy() HoldPolicy {
	return HoldPolicy{
		ReservationTTL: DefaultReservationTTL,
		LoanPeriod:     DefaultLoanPeriod,
	}
}

// Validate checks that both durations are positive.
func (p HoldPolicy) Validate() error {
	if p.ReservationTTL <= 0 || p.LoanPeriod <= 0 {
		return ErrInvalidDuration
	}

	return nil
}

// DeadlineFor returns the deadline of a hold of the given kind starting at from.
func (p HoldPolicy) DeadlineFor(kind HoldKind, from time.Time) time.Time {
	if kind == KindLoan {
		return from.Add(p.LoanPeriod)
	}

	return from.Add(p.ReservationTTL)
}
