package model

import "github.com/shopspring/decimal"

// ProviderPaymentCaptured is the provider status of a settled payment.
const ProviderPaymentCaptured = "captured"

// ProviderOrderRequest asks the payment provider to open an order.
type ProviderOrderRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
}

// ProviderOrder is the provider side order created for a checkout.
type ProviderOrder struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Status   string
}

// ProviderPayment is a payment attempt reported by the provider.
type ProviderPayment struct {
	ID      string
	OrderID string
	Status  string
	Amount  decimal.Decimal
}

// WebhookKind is the event name of a provider webhook.
type WebhookKind string

const (
	WebhookPaymentCaptured WebhookKind = "payment.captured"
	WebhookPaymentFailed   WebhookKind = "payment.failed"
	WebhookRefundProcessed WebhookKind = "refund.processed"
)

// WebhookEvent is a decoded provider webhook with amounts in major units.
type WebhookEvent struct {
	Kind            WebhookKind
	PaymentID       string
	ProviderOrderID string
	RefundID        string
	Amount          decimal.Decimal
}

// PaymentIntent is what a client needs to open the provider checkout.
type PaymentIntent struct {
	OrderNumber     string
	ProviderOrderID string
	Amount          decimal.Decimal
	Currency        string
	KeyID           string
}
