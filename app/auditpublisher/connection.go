package auditpublisher

import (
	"errors"

	"github.com/streadway/amqp"
)

const exchangeKindTopic = "topic"

// ErrConnectFailed is returned when the broker cannot be reached or the exchange cannot be declared.
var ErrConnectFailed = errors.New("connecting to the amqp broker failed")

// Connection owns the AMQP connection and the channel a Publisher publishes on.
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Dial connects to url, opens a channel and declares the durable topic exchange.
func Dial(url string, exchange string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Join(ErrConnectFailed, err)
	}

	err = channel.ExchangeDeclare(
		exchange,          // name
		exchangeKindTopic, // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, errors.Join(ErrConnectFailed, err)
	}

	return &Connection{conn: conn, channel: channel}, nil
}

// Channel returns the channel to publish on.
func (c *Connection) Channel() *amqp.Channel {
	return c.channel
}

// Close closes the channel and the connection.
func (c *Connection) Close() error {
	return errors.Join(c.channel.Close(), c.conn.Close())
}
