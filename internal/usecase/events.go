package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// EventPublisher hands workflow events to the notification fan-out.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// publishAll emits events after commit. Delivery failures are logged only,
// the state change they describe is already durable.
func publishAll(ctx context.Context, publisher EventPublisher, logger *slog.Logger, events ...model.Event) {
	for _, event := range events {
		if err := publisher.Publish(ctx, event); err != nil {
			logger.ErrorContext(ctx, "publish event failed",
				slog.String("kind", string(event.Kind)),
				slog.String("order", event.OrderNumber),
				slog.String("error", err.Error()),
			)
		}
	}
}

func orderCreatedEvents(order *model.Order, now time.Time) []model.Event {
	return []model.Event{
		{Kind: model.EventOrderCreated, OrderNumber: order.Number, UserID: order.UserID, OccurredAt: now, Payload: order},
		notification(order, now, fmt.Sprintf("Order %s has been placed", order.Number), "order_placed"),
	}
}

func statusEvents(order *model.Order, now time.Time) []model.Event {
	return []model.Event{
		{
			Kind:        model.EventOrderStatusUpdated,
			OrderNumber: order.Number,
			UserID:      order.UserID,
			OccurredAt:  now,
			Payload:     model.OrderStatusUpdate{OrderID: order.Number, Status: order.Status, UpdatedAt: order.UpdatedAt},
		},
		notification(order, now, statusMessage(order), "status_"+string(order.Status)),
	}
}

func paymentEvent(order *model.Order, now time.Time) model.Event {
	return model.Event{
		Kind:        model.EventPaymentUpdated,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		OccurredAt:  now,
		Payload: model.PaymentUpdate{
			OrderID:           order.Number,
			PaymentStatus:     order.Payment.Status,
			ProviderPaymentID: order.Payment.ProviderPaymentID,
		},
	}
}

func notification(order *model.Order, now time.Time, message, kind string) model.Event {
	return model.Event{
		Kind:        model.EventOrderNotification,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		OccurredAt:  now,
		Payload:     model.OrderNotification{UserID: order.UserID, OrderID: order.Number, Message: message, Type: kind},
	}
}

func statusMessage(order *model.Order) string {
	switch order.Status {
	case model.OrderStatusConfirmed:
		return fmt.Sprintf("Order %s is confirmed", order.Number)
	case model.OrderStatusPreparing:
		return fmt.Sprintf("Order %s is being prepared", order.Number)
	case model.OrderStatusOutForDelivery:
		return fmt.Sprintf("Order %s is out for delivery", order.Number)
	case model.OrderStatusDelivered:
		return fmt.Sprintf("Order %s has been delivered", order.Number)
	case model.OrderStatusCancelled:
		return fmt.Sprintf("Order %s has been cancelled", order.Number)
	case model.OrderStatusReturned:
		return fmt.Sprintf("Order %s has been returned", order.Number)
	default:
		return fmt.Sprintf("Order %s is %s", order.Number, order.Status)
	}
}
