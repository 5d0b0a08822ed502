package dto

import (
	"time"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// CreateOrderRequest places an order from explicit items or the cart.
type CreateOrderRequest struct {
	Items           []CartItemRequest      `json:"items"`
	AddressID       int64                  `json:"addressId"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	CouponCode      string                 `json:"couponCode"`
	UseWallet       bool                   `json:"useWallet"`
}

// CancelOrderRequest carries the customer's reason.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// StatusRequest moves an order to a new status.
type StatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest hands an order to a delivery partner.
type AssignRequest struct {
	DeliveryPartnerID int64 `json:"deliveryPartnerId"`
}

// LocationRequest reports delivery progress.
type LocationRequest struct {
	Location            string     `json:"location"`
	EstimatedDeliveryAt *time.Time `json:"estimatedDeliveryAt"`
}
