package holderholds

import (
	"time"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// HoldInfo represents one open hold as shown to its holder.
type HoldInfo struct {
	HoldID        string          `json:"holdId"`
	ItemID        string          `json:"itemId"`
	Kind          rental.HoldKind `json:"kind"`
	CreatedAt     time.Time       `json:"createdAt"`
	Deadline      time.Time       `json:"deadline"`
	RemainingSecs int64           `json:"remainingSeconds"`
	Overdue       bool            `json:"overdue"`
}

// HolderHolds represents the query result containing the open holds of a holder.
type HolderHolds struct {
	HolderKey    string     `json:"holderKey"`
	Holds        []HoldInfo `json:"holds"`
	Reservations int        `json:"reservations"`
	Loans        int        `json:"loans"`
	Count        int        `json:"count"`
}
