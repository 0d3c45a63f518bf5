package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service is the order creation pipeline: validate, build the
// aggregate, persist it atomically. It is the only write path for
// orders regardless of which transport the command arrived on.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateOrder validates the command and persists a new pending order,
// returning its id. A *ValidationError lists every failed field;
// persistence failures come back wrapped for the caller to retry.
func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	o := NewOrder(cmd)

	if err := s.repo.Create(ctx, o); err != nil {
		return "", fmt.Errorf("persist order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("orderId", o.ID),
		zap.String("customerId", o.CustomerID),
		zap.String("totalPrice", o.TotalPrice.String()),
	)
	return o.ID, nil
}
