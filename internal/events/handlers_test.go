package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checkout-service/internal/order"
)

type fakePipeline struct {
	createFn func(ctx context.Context, cmd order.CreateOrderCommand) (string, error)
	commands []order.CreateOrderCommand
}

func (f *fakePipeline) CreateOrder(ctx context.Context, cmd order.CreateOrderCommand) (string, error) {
	f.commands = append(f.commands, cmd)
	if f.createFn != nil {
		return f.createFn(ctx, cmd)
	}
	return "order-1", nil
}

func TestBasketCheckedOutHandler_CreatesOrder(t *testing.T) {
	pipeline := &fakePipeline{}
	handler := BasketCheckedOutHandler(pipeline, zap.NewNop())

	ev := NewBasketCheckedOut(sampleCart(), sampleDetails())
	body, err := EncodeBasketCheckedOut(ev)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), body))

	require.Len(t, pipeline.commands, 1)
	cmd := pipeline.commands[0]
	assert.Equal(t, "swn", cmd.CustomerID)
	require.Len(t, cmd.Items, 1)
	assert.Equal(t, "prod-x", cmd.Items[0].ProductID)
	assert.Equal(t, 2, cmd.Items[0].Quantity)
}

func TestBasketCheckedOutHandler_MalformedBody(t *testing.T) {
	pipeline := &fakePipeline{}
	handler := BasketCheckedOutHandler(pipeline, zap.NewNop())

	err := handler(context.Background(), []byte(`{"eventType":`))
	require.ErrorIs(t, err, ErrBadEvent)
	assert.Empty(t, pipeline.commands, "undecodable bodies must not reach the pipeline")
}

func TestBasketCheckedOutHandler_WrongEventType(t *testing.T) {
	pipeline := &fakePipeline{}
	handler := BasketCheckedOutHandler(pipeline, zap.NewNop())

	body := []byte(`{"eventId":"ev-1","eventType":"OrderCompleted","occurredAt":"2026-01-02T15:04:05Z","userName":"swn"}`)
	err := handler(context.Background(), body)
	require.ErrorIs(t, err, ErrBadEvent)
	assert.Empty(t, pipeline.commands)
}

func TestBasketCheckedOutHandler_PipelineErrorKeepsEventID(t *testing.T) {
	pipeline := &fakePipeline{
		createFn: func(ctx context.Context, cmd order.CreateOrderCommand) (string, error) {
			return "", errors.New("insert failed")
		},
	}
	handler := BasketCheckedOutHandler(pipeline, zap.NewNop())

	ev := NewBasketCheckedOut(sampleCart(), sampleDetails())
	body, err := EncodeBasketCheckedOut(ev)
	require.NoError(t, err)

	err = handler(context.Background(), body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ev.EventID, "pipeline failures carry the event id for correlation")
	assert.False(t, errors.Is(err, ErrBadEvent))
}

func TestBasketCheckedOutHandler_ValidationErrorSurvivesWrapping(t *testing.T) {
	pipeline := &fakePipeline{
		createFn: func(ctx context.Context, cmd order.CreateOrderCommand) (string, error) {
			return "", &order.ValidationError{Fields: []order.FieldError{
				{Field: "CustomerID", Reason: "is required"},
			}}
		},
	}
	handler := BasketCheckedOutHandler(pipeline, zap.NewNop())

	ev := NewBasketCheckedOut(sampleCart(), sampleDetails())
	body, err := EncodeBasketCheckedOut(ev)
	require.NoError(t, err)

	err = handler(context.Background(), body)
	var ve *order.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "CustomerID", ve.Fields[0].Field)
}
