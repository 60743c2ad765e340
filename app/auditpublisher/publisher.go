package auditpublisher

import (
	"context"
	"errors"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/streadway/amqp"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
)

const (
	// DefaultExchange is the topic exchange audit entries are published to.
	DefaultExchange = "rental.audit"

	routingKeyPrefix = "rental."
	contentTypeJSON  = "application/json"

	headerItemID    = "item_id"
	headerHoldID    = "hold_id"
	headerEventType = "event_type"
	headerActor     = "actor"

	logMsgPublished = "audit entry published"
	logAttrRouting  = "routing_key"
	logAttrEntryID  = "entry_id"
)

var (
	// ErrNilChannel is returned when a Publisher is created without a channel.
	ErrNilChannel = errors.New("amqp channel must not be nil")

	// ErrMarshalingFailed is returned when an entry cannot be encoded.
	ErrMarshalingFailed = errors.New("marshaling the audit entry failed")

	// ErrPublishFailed is returned when the broker rejects a publish.
	ErrPublishFailed = errors.New("publishing the audit entry failed")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Channel is the part of *amqp.Channel the Publisher uses.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher implements rental.AuditPublisher on top of an AMQP channel.
type Publisher struct {
	channel  Channel
	exchange string
	logger   rental.Logger
	mu       sync.Mutex
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithExchange overrides DefaultExchange.
func WithExchange(exchange string) Option {
	return func(p *Publisher) {
		p.exchange = exchange
	}
}

// WithLogger sets a logger for published entries (debug level).
func WithLogger(logger rental.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a Publisher that publishes on channel.
func NewPublisher(channel Channel, opts ...Option) (*Publisher, error) {
	if channel == nil {
		return nil, ErrNilChannel
	}

	p := &Publisher{
		channel:  channel,
		exchange: DefaultExchange,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// RoutingKey returns the routing key of an event type.
func RoutingKey(eventType rental.EventType) string {
	return routingKeyPrefix + strings.ToLower(string(eventType))
}

// PublishAuditEntry publishes one entry as a persistent JSON message.
func (p *Publisher) PublishAuditEntry(ctx context.Context, entry rental.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return errors.Join(ErrMarshalingFailed, err)
	}

	routingKey := RoutingKey(entry.EventType)

	msg := amqp.Publishing{
		ContentType:  contentTypeJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.ID,
		Timestamp:    entry.OccurredAt,
		Headers: amqp.Table{
			headerItemID:    entry.ItemID,
			headerHoldID:    entry.HoldID,
			headerEventType: string(entry.EventType),
			headerActor:     entry.Actor,
		},
	}

	p.mu.Lock()
	err = p.channel.Publish(p.exchange, routingKey, false, false, msg)
	p.mu.Unlock()

	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}

	if p.logger != nil {
		p.logger.Debug(logMsgPublished, logAttrRouting, routingKey, logAttrEntryID, entry.ID)
	}

	return nil
}
