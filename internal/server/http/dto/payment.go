package dto

import "github.com/shopspring/decimal"

// PaymentIntentResponse lets a client open the provider checkout.
type PaymentIntentResponse struct {
	OrderID         string          `json:"orderId"`
	ProviderOrderID string          `json:"providerOrderId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	KeyID           string          `json:"keyId"`
}

// VerifyPaymentRequest is the signed triple returned by the provider checkout.
type VerifyPaymentRequest struct {
	ProviderOrderID   string `json:"providerOrderId"`
	ProviderPaymentID string `json:"providerPaymentId"`
	Signature         string `json:"signature"`
}
