package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

var errClosed = errors.New("RabbitMQ client is closed")

// Client holds the RabbitMQ connection and the channel used for publishing.
// Every queue is declared together with a "<queue>.failed" queue that
// retains buried messages. Delayed messages go to "<queue>.delay.<ms>"
// queues, declared on first use, that dead-letter back to the queue.
//
// A dropped connection is redialed and the queues redeclared; consumers
// resume on the new connection.
type Client struct {
	url    string
	queues []string
	logger *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	delays  map[string]bool
	closed  bool

	// dialMu serializes reconnects so that consumers sharing a dead
	// connection dial once.
	dialMu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL    string
	Queues []string
}

// DelayQueue returns the name of the queue that holds messages for queue
// until delay has passed.
func DelayQueue(queue string, delay time.Duration) string {
	return fmt.Sprintf("%s.delay.%d", queue, delay.Milliseconds())
}

// FailedQueue returns the name of the failed queue for queue.
func FailedQueue(queue string) string { return queue + ".failed" }

// NewClient connects to RabbitMQ and declares cfg.Queues.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	c := &Client{url: cfg.URL, queues: cfg.Queues, logger: logger}
	conn, ch, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.conn, c.channel, c.delays = conn, ch, map[string]bool{}

	logger.Info("RabbitMQ client connected", "queues", cfg.Queues)
	return c, nil
}

// dial opens a connection and publishing channel and declares the queues.
func (c *Client) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	for _, q := range c.queues {
		if err := declare(ch, q); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}
	return conn, ch, nil
}

func declare(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare %s: %w", queue, err)
	}
	if _, err := ch.QueueDeclare(FailedQueue(queue), true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare %s: %w", FailedQueue(queue), err)
	}
	return nil
}

// nextBackoff doubles d, capped at limit.
func nextBackoff(d, limit time.Duration) time.Duration {
	if d <= 0 {
		return reconnectMin
	}
	return min(d*2, limit)
}

func (c *Client) connection() (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errClosed
	}
	return c.conn, nil
}

// reconnect replaces stale with a fresh connection. It dials up to attempts
// times (forever when attempts is 0) with a doubling delay between tries.
// When another caller already replaced stale, it returns at once.
func (c *Client) reconnect(ctx context.Context, stale *amqp.Connection, attempts int) error {
	c.dialMu.Lock()
	defer c.dialMu.Unlock()

	delay := reconnectMin
	for try := 1; ; try++ {
		c.mu.Lock()
		closed, current := c.closed, c.conn
		c.mu.Unlock()
		if closed {
			return errClosed
		}
		if current != stale && current != nil && !current.IsClosed() {
			return nil
		}

		conn, ch, err := c.dial()
		if err == nil {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				conn.Close()
				return errClosed
			}
			old := c.conn
			c.conn, c.channel, c.delays = conn, ch, map[string]bool{}
			c.mu.Unlock()
			if old != nil && !old.IsClosed() {
				old.Close()
			}
			c.logger.Info("RabbitMQ connection restored", "attempt", try)
			return nil
		}
		if attempts > 0 && try >= attempts {
			return err
		}

		c.logger.Warn("RabbitMQ reconnect failed", "attempt", try, "retryIn", delay.String(), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = nextBackoff(delay, reconnectMax)
	}
}

// Close closes the RabbitMQ connection and channel and stops reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Ping reports whether the connection is still open.
func (c *Client) Ping(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}
	return nil
}

// publish sends msg to queue, declaring the delay queue first when delay is
// positive. It reports the connection it used so a failure can redial it.
func (c *Client) publish(queue string, delay time.Duration, msg amqp.Publishing) (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errClosed
	}
	if c.channel == nil {
		return c.conn, fmt.Errorf("RabbitMQ channel is not available")
	}

	routingKey := queue
	if delay > 0 {
		routingKey = DelayQueue(queue, delay)
		if !c.delays[routingKey] {
			args := amqp.Table{
				"x-message-ttl":             delay.Milliseconds(),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": queue,
			}
			if _, err := c.channel.QueueDeclare(routingKey, true, false, false, false, args); err != nil {
				return c.conn, fmt.Errorf("failed to declare %s: %w", routingKey, err)
			}
			c.delays[routingKey] = true
		}
	}
	if err := c.channel.Publish("", routingKey, false, false, msg); err != nil {
		return c.conn, fmt.Errorf("failed to publish message to %s: %w", routingKey, err)
	}
	return c.conn, nil
}

// send publishes msg and, when the connection has dropped, redials once and
// tries again.
func (c *Client) send(ctx context.Context, queue string, delay time.Duration, msg amqp.Publishing) error {
	conn, err := c.publish(queue, delay, msg)
	if err == nil || errors.Is(err, errClosed) {
		return err
	}
	c.logger.Warn("Publish failed, reconnecting", "queue", queue, "error", err)
	if rerr := c.reconnect(ctx, conn, 1); rerr != nil {
		return errors.Join(err, rerr)
	}
	_, err = c.publish(queue, delay, msg)
	return err
}

// Publish sends body to queue. A positive delay parks the message on the
// delay queue for that delay, whose queue-wide TTL hands it back to queue.
func (c *Client) Publish(ctx context.Context, queue string, body []byte, delay time.Duration) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	return c.send(ctx, queue, delay, msg)
}

// Bury sends body to the failed queue of queue.
func (c *Client) Bury(ctx context.Context, queue string, body []byte, reason string) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{"x-failure-reason": reason},
	}
	if err := c.send(ctx, FailedQueue(queue), 0, msg); err != nil {
		return fmt.Errorf("failed to bury message from %s: %w", queue, err)
	}
	return nil
}

// Consume processes queue one message at a time until ctx is done.
// Messages are acknowledged when handle succeeds and requeued when it fails.
// When the connection drops, Consume redials with a capped, doubling delay
// and registers again.
func (c *Client) Consume(ctx context.Context, queue string, handle func(ctx context.Context, body []byte) error) error {
	delay := reconnectMin
	for {
		conn, err := c.connection()
		if err != nil {
			return err
		}
		started := time.Now()
		err = c.consumeOn(ctx, conn, queue, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(started) >= reconnectMax {
			delay = reconnectMin
		}
		c.logger.Warn("RabbitMQ consumer lost, reconnecting", "queue", queue, "retryIn", delay.String(), "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = nextBackoff(delay, reconnectMax)
		if err := c.reconnect(ctx, conn, 0); err != nil {
			return err
		}
	}
}

func (c *Client) consumeOn(ctx context.Context, conn *amqp.Connection, queue string, handle func(ctx context.Context, body []byte) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS on %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", queue)
			}
			if err := handle(ctx, msg.Body); err != nil {
				c.logger.Error("Error processing message", "queue", queue, "deliveryTag", msg.DeliveryTag, "error", err)
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.logger.Error("Error nacking message", "queue", queue, "error", nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.logger.Error("Error acking message", "queue", queue, "error", ackErr)
			}
		}
	}
}
