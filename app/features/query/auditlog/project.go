package auditlog

import (
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

// ProjectAuditTrail builds the AuditTrail of itemID from the entries read from the engine.
func ProjectAuditTrail(itemID string, entries rental.AuditEntries) AuditTrail {
	if entries == nil {
		entries = make(rental.AuditEntries, 0)
	}

	counts := make(map[rental.EventType]int)
	for _, entry := range entries {
		counts[entry.EventType]++
	}

	return AuditTrail{
		ItemID:  itemID,
		Entries: entries,
		Counts:  counts,
		Count:   len(entries),
	}
}
