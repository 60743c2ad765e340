package auditpublisher_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/app/auditpublisher"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental"
	"github.com/bumeveryday/DullGenius-Rental-Platform-sub000/rental/memengine"
	. "github.com/bumeveryday/DullGenius-Rental-Platform-sub000/testutil/rentaltest" //nolint:revive
)

type publishedMessage struct {
	exchange   string
	routingKey string
	msg        amqp.Publishing
}

type channelSpy struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

func (c *channelSpy) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}

	c.published = append(c.published, publishedMessage{exchange: exchange, routingKey: key, msg: msg})

	return nil
}

func (c *channelSpy) routingKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.published))
	for _, p := range c.published {
		keys = append(keys, p.routingKey)
	}

	return keys
}

func Test_RoutingKey(t *testing.T) {
	assert.Equal(t, "rental.reserve", auditpublisher.RoutingKey(rental.EventReserve))
	assert.Equal(t, "rental.demand_signal", auditpublisher.RoutingKey(rental.EventDemandSignal))
	assert.Equal(t, "rental.manual_status_change", auditpublisher.RoutingKey(rental.EventManualStatusChange))
}

func Test_Publisher_PublishAuditEntry(t *testing.T) {
	// setup
	channel := &channelSpy{}
	publisher, err := auditpublisher.NewPublisher(channel)
	require.NoError(t, err)

	entry := rental.BuildAuditEntry("catan", "hold-1", rental.EventReturn, StaffActor, StartOfDay, "")
	entry.ID = "entry-1"

	// act
	err = publisher.PublishAuditEntry(context.Background(), entry)

	// assert
	require.NoError(t, err)
	require.Len(t, channel.published, 1)

	published := channel.published[0]
	assert.Equal(t, auditpublisher.DefaultExchange, published.exchange)
	assert.Equal(t, "rental.return", published.routingKey)
	assert.Equal(t, "application/json", published.msg.ContentType)
	assert.Equal(t, amqp.Persistent, published.msg.DeliveryMode)
	assert.Equal(t, "entry-1", published.msg.MessageId)
	assert.Equal(t, "catan", published.msg.Headers["item_id"])

	var decoded rental.AuditEntry
	require.NoError(t, jsoniter.Unmarshal(published.msg.Body, &decoded))
	assert.Equal(t, "hold-1", decoded.HoldID)
	assert.Equal(t, rental.EventReturn, decoded.EventType)
	assert.True(t, StartOfDay.Equal(decoded.OccurredAt))
}

func Test_Publisher_PublishAuditEntry_Failures(t *testing.T) {
	// setup
	channel := &channelSpy{err: amqp.ErrClosed}
	publisher, err := auditpublisher.NewPublisher(channel, auditpublisher.WithExchange("audit.test"))
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	entry := rental.BuildAuditEntry("catan", "", rental.EventDemandSignal, StaffActor, StartOfDay, "")

	// act
	publishErr := publisher.PublishAuditEntry(context.Background(), entry)
	canceledErr := publisher.PublishAuditEntry(canceled, entry)

	// assert
	assert.ErrorIs(t, publishErr, auditpublisher.ErrPublishFailed)
	assert.True(t, errors.Is(publishErr, amqp.ErrClosed))
	assert.ErrorIs(t, canceledErr, context.Canceled)
}

func Test_NewPublisher_NilChannel(t *testing.T) {
	_, err := auditpublisher.NewPublisher(nil)

	assert.ErrorIs(t, err, auditpublisher.ErrNilChannel)
}

func Test_Publisher_ReceivesEngineTransitions(t *testing.T) {
	// setup
	ctx := context.Background()
	channel := &channelSpy{}
	publisher, err := auditpublisher.NewPublisher(channel)
	require.NoError(t, err)
	engine, _ := GivenEngine(t, memengine.WithAuditPublisher(publisher))

	// arrange
	GivenItemWasRegistered(ctx, t, engine, "catan", 1)

	// act
	hold := GivenReservationWasMade(ctx, t, engine, "catan", rental.UserHolder("u-1"))
	_, reserveErr := engine.Reserve(ctx, "catan", rental.UserHolder("u-2"))
	_, convertErr := engine.ConvertToLoan(ctx, hold.ID, StaffActor)

	// assert
	assert.ErrorIs(t, reserveErr, rental.ErrOutOfStock)
	require.NoError(t, convertErr)
	assert.Equal(t, []string{"rental.reserve", "rental.demand_signal", "rental.convert"}, channel.routingKeys())
}
