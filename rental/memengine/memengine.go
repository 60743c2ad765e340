package memengine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	logMsgOperation          = "rental operation"
	logMsgOverdueReclaimed   = "overdue reservations reclaimed"
	logMsgReconciliationGap  = "reconciliation gap detected"
	logMsgAuditPublishFailed = "publishing audit entry failed"
	logAttrOperation         = "operation"
	logAttrItemID            = "item_id"
	logAttrHoldID            = "hold_id"
	logAttrActor             = "actor"
	logAttrCount             = "count"
	logAttrError             = "error"
)

// Engine keeps catalog items, holds and the audit log in memory.
type Engine struct {
	mu      sync.Mutex
	items   map[string]rental.CatalogItem
	holds   map[string]rental.Hold
	holdIDs []string
	audit   rental.AuditEntries

	clock          rental.Clock
	policy         rental.HoldPolicy
	logger         rental.Logger
	auditPublisher rental.AuditPublisher
}

// Option defines a functional option for configuring Engine.
type Option func(*Engine) error

// WithHoldPolicy sets the reservation TTL and loan period.
func WithHoldPolicy(policy rental.HoldPolicy) Option {
	return func(e *Engine) error {
		if err := policy.Validate(); err != nil {
			return err
		}

		e.policy = policy

		return nil
	}
}

// WithClock replaces the system clock.
func WithClock(clock rental.Clock) Option {
	return func(e *Engine) error {
		if clock == nil {
			return rental.ErrNilClock
		}

		e.clock = clock

		return nil
	}
}

// WithLogger sets the logger for operation outcomes and warnings.
func WithLogger(logger rental.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithAuditPublisher sets a publisher that receives every audit entry after the operation completed.
func WithAuditPublisher(publisher rental.AuditPublisher) Option {
	return func(e *Engine) error {
		e.auditPublisher = publisher
		return nil
	}
}

// NewEngine creates an empty in-memory engine.
func NewEngine(options ...Option) (*Engine, error) {
	engine := &Engine{
		items:  make(map[string]rental.CatalogItem),
		holds:  make(map[string]rental.Hold),
		clock:  rental.SystemClock(),
		policy: rental.DefaultHoldPolicy(),
	}

	for _, option := range options {
		if err := option(engine); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// Policy returns the hold policy the engine applies.
func (e *Engine) Policy() rental.HoldPolicy {
	return e.policy
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}

// appendAudit must be called with e.mu held.
func (e *Engine) appendAudit(entry rental.AuditEntry) (rental.AuditEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return rental.AuditEntry{}, err
	}

	entry.ID = id.String()
	e.audit = append(e.audit, entry)

	return entry, nil
}

// publish runs without e.mu held.
func (e *Engine) publish(ctx context.Context, entries ...rental.AuditEntry) {
	if e.auditPublisher == nil {
		return
	}

	for _, entry := range entries {
		if err := e.auditPublisher.PublishAuditEntry(ctx, entry); err != nil {
			e.logWarn(logMsgAuditPublishFailed, logAttrError, err.Error(), logAttrItemID, entry.ItemID)
		}
	}
}

func (e *Engine) logOperation(operation string, args ...any) {
	if e.logger == nil {
		return
	}

	e.logger.Info(logMsgOperation, append([]any{logAttrOperation, operation}, args...)...)
}

func (e *Engine) logInfo(message string, args ...any) {
	if e.logger != nil {
		e.logger.Info(message, args...)
	}
}

func (e *Engine) logWarn(message string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(message, args...)
	}
}

// openHoldsOf returns the open holds matching keep, nearest deadline first. Must be called with e.mu held.
func (e *Engine) openHoldsOf(keep func(rental.Hold) bool) rental.Holds {
	holds := make(rental.Holds, 0)

	for _, id := range e.holdIDs {
		hold := e.holds[id]
		if hold.IsOpen() && keep(hold) {
			holds = append(holds, hold)
		}
	}

	slices.SortStableFunc(holds, func(a, b rental.Hold) int {
		return a.Deadline.Compare(b.Deadline)
	})

	return holds
}

var _ rental.Engine = (*Engine)(nil)
