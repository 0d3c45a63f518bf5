package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"checkout-service/internal/order"
	"checkout-service/internal/rabbit"
)

const (
	consumerTag    = "order-service"
	requeueBackoff = time.Second
)

// Consumer subscribes to the checkout queue and dispatches deliveries
// to the handler one at a time, acknowledging only after the handler
// returns. Undecodable messages and events that fail validation are
// dropped after logging; every other failure is requeued so the broker
// redelivers once the fault clears.
type Consumer struct {
	manager *rabbit.ConnectionManager
	handler HandlerFunc
	logger  *zap.Logger

	mu   sync.Mutex
	ch   *amqp.Channel
	done chan struct{}
}

func NewConsumer(manager *rabbit.ConnectionManager, handler HandlerFunc, logger *zap.Logger) *Consumer {
	return &Consumer{manager: manager, handler: handler, logger: logger}
}

// Start declares the queue, opens the subscription and launches the
// dispatch loop. Prefetch is one message per consumer.
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.manager.Channel()
	if err != nil {
		return err
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set qos: %w", err)
	}

	if _, err := ch.QueueDeclare(BasketCheckedOutQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare %s: %w", BasketCheckedOutQueue, err)
	}

	msgs, err := ch.Consume(
		BasketCheckedOutQueue,
		consumerTag,
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume %s: %w", BasketCheckedOutQueue, err)
	}

	c.mu.Lock()
	c.ch = ch
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.dispatch(ctx, msgs, done)

	c.logger.Info("consuming checkout events", zap.String("queue", BasketCheckedOutQueue))
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("checkout consumer stopping")
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("delivery channel closed")
				return
			}
			c.handleDelivery(ctx, msg)
		}
	}
}

// handleDelivery applies the ack policy for one message. A panic in
// the handler must not kill the dispatch loop.
func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panicked",
				zap.Any("panic", r),
				zap.String("messageId", msg.MessageId),
			)
			_ = msg.Nack(false, false)
		}
	}()

	if msg.RoutingKey != BasketCheckedOutQueue {
		c.logger.Warn("ignoring delivery with unexpected routing key",
			zap.String("routingKey", msg.RoutingKey),
			zap.String("messageId", msg.MessageId),
		)
		_ = msg.Ack(false)
		return
	}

	err := c.handler(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrBadEvent):
		c.logger.Warn("dropping undecodable message",
			zap.Error(err),
			zap.String("messageId", msg.MessageId),
		)
		_ = msg.Ack(false)
	case isValidationError(err):
		c.logger.Warn("dropping checkout event rejected by validation",
			zap.Error(err),
			zap.String("messageId", msg.MessageId),
		)
		_ = msg.Ack(false)
	default:
		c.logger.Error("handling failed, requeueing",
			zap.Error(err),
			zap.String("messageId", msg.MessageId),
		)
		_ = msg.Nack(false, true)

		// Brief pause so a dead database does not spin the same
		// message through the loop at full speed.
		select {
		case <-ctx.Done():
		case <-time.After(requeueBackoff):
		}
	}
}

func isValidationError(err error) bool {
	var ve *order.ValidationError
	return errors.As(err, &ve)
}

// Stop cancels the subscription, waits for the in-flight message to
// finish within the context deadline and closes the channel.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	ch, done := c.ch, c.done
	c.ch, c.done = nil, nil
	c.mu.Unlock()

	if ch == nil {
		return nil
	}

	if err := ch.Cancel(consumerTag, false); err != nil {
		c.logger.Warn("cancel subscription", zap.Error(err))
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return nil
}
