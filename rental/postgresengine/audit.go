package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/postgresengine/internal/adapters"
)

var jsonAPI = jsoniter.ConfigFastest

// appendAudit persists an audit entry inside the transaction and queues it for publishing.
func (e Engine) appendAudit(ctx context.Context, s *txScope, entry rental.AuditEntry) error {
	id, idErr := uuid.NewV7()
	if idErr != nil {
		return errors.Join(rental.ErrWritingFailed, idErr)
	}

	entry.ID = id.String()

	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	metadataJSON, marshalErr := jsonAPI.Marshal(metadata)
	if marshalErr != nil {
		return errors.Join(rental.ErrWritingFailed, marshalErr)
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(tableAuditLog).
		Rows(goqu.Record{
			colID:         entry.ID,
			colItemID:     entry.ItemID,
			colHoldID:     nullableString(entry.HoldID),
			colEventType:  string(entry.EventType),
			colActor:      entry.Actor,
			colOccurredAt: entry.OccurredAt,
			colDetail:     entry.Detail,
			colMetadata:   goqu.L(castJsonb, string(metadataJSON)),
		})

	sqlQuery, buildErr := e.toSQL(ctx, insertStmt)
	if buildErr != nil {
		return buildErr
	}

	if _, execErr := e.exec(ctx, s.tx, sqlQuery, "append audit"); execErr != nil {
		return execErr
	}

	s.pending = append(s.pending, entry)

	return nil
}

// ListAuditLog returns the audit entries of an item, newest first. A limit of 0 returns all entries.
func (e Engine) ListAuditLog(ctx context.Context, itemID string, limit uint) (entries rental.AuditEntries, err error) {
	observer, ctx := e.observe(ctx, operationListAuditLog, map[string]string{spanAttrItemID: itemID})
	defer func() { observer.finish(err, nil) }()

	if itemID == "" {
		return nil, rental.ErrEmptyItemID
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(tableAuditLog).
		Select(auditColumns...).
		Where(goqu.C(colItemID).Eq(itemID)).
		Order(goqu.I(colOccurredAt).Desc(), goqu.I(colID).Desc())

	if limit > 0 {
		selectStmt = selectStmt.Limit(limit)
	}

	sqlQuery, buildErr := e.toSQL(ctx, selectStmt)
	if buildErr != nil {
		return nil, buildErr
	}

	rows, queryErr := e.query(ctx, e.db, sqlQuery, "list audit log")
	if queryErr != nil {
		return nil, queryErr
	}

	entries = make(rental.AuditEntries, 0)

	scanErr := e.scanAll(ctx, rows, func(rows adapters.DBRows) error {
		entry, entryErr := scanAuditEntry(rows)
		if entryErr != nil {
			return entryErr
		}

		entries = append(entries, entry)

		return nil
	})
	if scanErr != nil {
		return nil, scanErr
	}

	return entries, nil
}

func scanAuditEntry(rows adapters.DBRows) (rental.AuditEntry, error) {
	var entry rental.AuditEntry
	var holdID *string
	var eventType string
	var metadataJSON []byte

	scanErr := rows.Scan(
		&entry.ID, &entry.ItemID, &holdID, &eventType, &entry.Actor,
		&entry.OccurredAt, &entry.Detail, &metadataJSON,
	)
	if scanErr != nil {
		return rental.AuditEntry{}, scanErr
	}

	entry.EventType = rental.EventType(eventType)
	entry.OccurredAt = entry.OccurredAt.UTC()

	if holdID != nil {
		entry.HoldID = *holdID
	}

	if len(metadataJSON) > 0 {
		if err := jsonAPI.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return rental.AuditEntry{}, err
		}
	}

	if len(entry.Metadata) == 0 {
		entry.Metadata = nil
	}

	return entry, nil
}

// recordDemandSignal appends a DEMAND_SIGNAL entry in its own transaction.
// It runs after an out-of-stock rejection; failures are only logged.
func (e Engine) recordDemandSignal(ctx context.Context, itemID string, holder rental.Holder, actor string) {
	now := e.now()

	entry := rental.BuildAuditEntry(itemID, "", rental.EventDemandSignal, actor, now, "no copy available").
		WithMetadata("holder", holder.Key())

	err := e.withTx(ctx, func(s *txScope) error {
		return e.appendAudit(ctx, s, entry)
	})
	if err != nil {
		e.logWarn(ctx, logMsgDemandSignalFailed, logAttrError, err.Error(), logAttrItemID, itemID)
	}
}
