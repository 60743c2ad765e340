package auditlog

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// AuditTrail represents the query result containing the newest audit entries of an item.
type AuditTrail struct {
	ItemID  string                   `json:"itemId"`
	Entries rental.AuditEntries      `json:"entries"`
	Counts  map[rental.EventType]int `json:"counts"`
	Count   int                      `json:"count"`
}
