package model

import "time"

// EventKind names an event emitted by the order workflow.
type EventKind string

const (
	EventOrderCreated            EventKind = "order-created"
	EventOrderStatusUpdated      EventKind = "order-status-updated"
	EventOrderNotification       EventKind = "order-notification"
	EventDeliveryLocationUpdated EventKind = "delivery-location-updated"
	EventPaymentUpdated          EventKind = "payment-updated"
)

// Event is a workflow notification handed to the publisher.
type Event struct {
	Kind        EventKind
	OrderNumber string
	UserID      int64
	OccurredAt  time.Time
	Payload     any
}

// OrderStatusUpdate is the payload of EventOrderStatusUpdated.
type OrderStatusUpdate struct {
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OrderNotification is the payload of EventOrderNotification.
type OrderNotification struct {
	UserID  int64  `json:"userId"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// DeliveryLocation is the payload of EventDeliveryLocationUpdated.
type DeliveryLocation struct {
	OrderID  string `json:"orderId"`
	Location string `json:"location"`
}

// PaymentUpdate is the payload of EventPaymentUpdated.
type PaymentUpdate struct {
	OrderID           string        `json:"orderId"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	ProviderPaymentID string        `json:"providerPaymentId,omitempty"`
}
