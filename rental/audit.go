package rental

import (
	"time"
)

// EventType classifies an audit entry.
type EventType string

const (
	EventReserve            EventType = "RESERVE"
	EventDirectLoan         EventType = "DIRECT_LOAN"
	EventConvert            EventType = "CONVERT"
	EventReturn             EventType = "RETURN"
	EventExpire             EventType = "EXPIRE"
	EventCancel             EventType = "CANCEL"
	EventManualStatusChange EventType = "MANUAL_STATUS_CHANGE"
	EventDemandSignal       EventType = "DEMAND_SIGNAL"
)

// AuditEntry is an immutable record of one state transition on a catalog item.
type AuditEntry struct {
	ID         string            `json:"id"`
	ItemID     string            `json:"itemId"`
	HoldID     string            `json:"holdId,omitempty"`
	EventType  EventType         `json:"eventType"`
	Actor      string            `json:"actor"`
	OccurredAt time.Time         `json:"occurredAt"`
	Detail     string            `json:"detail"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// AuditEntries is a list of audit entries, newest first when returned by an engine.
type AuditEntries []AuditEntry

// BuildAuditEntry creates an AuditEntry without an id; engines assign ids when they persist.
func BuildAuditEntry(
	itemID string,
	holdID string,
	eventType EventType,
	actor string,
	occurredAt time.Time,
	detail string,
) AuditEntry {
	return AuditEntry{
		ItemID:     itemID,
		HoldID:     holdID,
		EventType:  eventType,
		Actor:      actor,
		OccurredAt: occurredAt,
		Detail:     detail,
	}
}

// WithMetadata returns a copy of the entry carrying the given key/value pair.
func (e AuditEntry) WithMetadata(key, value string) AuditEntry {
	metadata := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		metadata[k] = v
	}
	metadata[key] = value
	e.Metadata = metadata

	return e
}

// HoldAuditEntry builds the audit entry for a hold transition with the standard metadata.
func HoldAuditEntry(hold Hold, eventType EventType, actor string, occurredAt time.Time, detail string) AuditEntry {
	return BuildAuditEntry(hold.ItemID, hold.ID, eventType, actor, occurredAt, detail).
		WithMetadata("kind", string(hold.Kind)).
		WithMetadata("holder", hold.Holder.Key()).
		WithMetadata("deadline", hold.Deadline.UTC().Format(time.RFC3339))
}
