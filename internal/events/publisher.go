package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"checkout-service/internal/rabbit"
)

const publishTimeout = 3 * time.Second

// Publisher sends checkout events straight to the well-known queue on
// the default exchange. The channel is acquired lazily so construction
// succeeds while the broker is still down, and re-acquired after a
// broker fault.
type Publisher struct {
	manager *rabbit.ConnectionManager

	mu sync.Mutex
	ch *amqp.Channel
}

func NewPublisher(manager *rabbit.ConnectionManager) *Publisher {
	return &Publisher{manager: manager}
}

// PublishBasketCheckedOut serializes and publishes one checkout event.
// The message is persistent and carries the event id as its broker
// message id.
func (p *Publisher) PublishBasketCheckedOut(ctx context.Context, ev BasketCheckedOut) error {
	body, err := EncodeBasketCheckedOut(ev)
	if err != nil {
		return err
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		pubCtx,
		"",                    // default exchange
		BasketCheckedOutQueue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:   contentTypeJSON,
			DeliveryMode:  amqp.Persistent,
			MessageId:     ev.EventID,
			CorrelationId: ev.CorrelationID,
			Timestamp:     ev.OccurredAt,
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", BasketCheckedOutQueue, err)
	}
	return nil
}

// channel returns a usable channel with the queue declared, opening or
// reopening one as needed.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	ch, err := p.manager.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(BasketCheckedOutQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", BasketCheckedOutQueue, err)
	}

	p.ch = ch
	return ch, nil
}

// Close releases the cached channel. The shared connection belongs to
// the manager and is closed there.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return nil
	}
	ch := p.ch
	p.ch = nil
	if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return nil
}
