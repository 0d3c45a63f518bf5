package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"checkout-service/internal/order"
)

// HandlerFunc processes one raw message body. The consumer decides
// whether to ack, drop or requeue from the returned error.
type HandlerFunc func(ctx context.Context, body []byte) error

// OrderCreator is the slice of the order pipeline the consumer needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, cmd order.CreateOrderCommand) (string, error)
}

// BasketCheckedOutHandler decodes checkout events and feeds them into
// the order creation pipeline, the same write path the HTTP endpoint
// uses.
func BasketCheckedOutHandler(pipeline OrderCreator, logger *zap.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		ev, err := DecodeBasketCheckedOut(body)
		if err != nil {
			return err
		}

		orderID, err := pipeline.CreateOrder(ctx, CommandFromBasketCheckedOut(ev))
		if err != nil {
			return fmt.Errorf("create order from event %s: %w", ev.EventID, err)
		}

		logger.Info("order created from checkout event",
			zap.String("orderId", orderID),
			zap.String("eventId", ev.EventID),
			zap.String("userName", ev.UserName),
		)
		return nil
	}
}
