package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"checkout-service/internal/basket"
	"checkout-service/internal/events"
)

// ErrBasketNotFound is returned when checkout is attempted for a user
// with no stored basket. No event is published in that case.
var ErrBasketNotFound = errors.New("checkout: basket not found")

// ErrPublishFailed marks a checkout whose basket was already deleted
// but whose event never reached the broker. The checkout is lost
// unless reconciled by hand from the log entry.
var ErrPublishFailed = errors.New("checkout: publish failed")

// EventPublisher is the slice of the events package the service needs.
type EventPublisher interface {
	PublishBasketCheckedOut(ctx context.Context, ev events.BasketCheckedOut) error
}

// Service orchestrates checkout: load the basket, delete it, then
// publish the checkout event. The basket is gone before the publish
// happens, so a publish failure leaves no basket and no order.
type Service struct {
	store     basket.Store
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(store basket.Store, publisher EventPublisher, logger *zap.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// Checkout removes the user's basket and announces it on the checkout
// queue. The published event is returned so callers can surface its
// id.
func (s *Service) Checkout(ctx context.Context, userName string, details events.CheckoutDetails) (events.BasketCheckedOut, error) {
	cart, err := s.store.GetBasket(ctx, userName)
	if err != nil {
		return events.BasketCheckedOut{}, fmt.Errorf("load basket %q: %w", userName, err)
	}
	if cart == nil {
		return events.BasketCheckedOut{}, fmt.Errorf("%w: %s", ErrBasketNotFound, userName)
	}

	ev := events.NewBasketCheckedOut(cart, details)

	if err := s.store.DeleteBasket(ctx, userName); err != nil {
		return events.BasketCheckedOut{}, fmt.Errorf("delete basket %q: %w", userName, err)
	}

	if err := s.publisher.PublishBasketCheckedOut(ctx, ev); err != nil {
		s.logger.Error("checkout event lost after basket deletion",
			zap.Error(err),
			zap.String("userName", userName),
			zap.String("eventId", ev.EventID),
			zap.String("totalPrice", ev.TotalPrice.String()),
		)
		return events.BasketCheckedOut{}, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	s.logger.Info("basket checked out",
		zap.String("userName", userName),
		zap.String("eventId", ev.EventID),
		zap.String("totalPrice", ev.TotalPrice.String()),
	)
	return ev, nil
}
