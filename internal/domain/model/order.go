package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusReturned       OrderStatus = "returned"
)

// legalPredecessors lists, for every status, the statuses it may be entered from.
var legalPredecessors = map[OrderStatus][]OrderStatus{
	OrderStatusConfirmed:      {OrderStatusPending},
	OrderStatusPreparing:      {OrderStatusConfirmed},
	OrderStatusOutForDelivery: {OrderStatusPreparing},
	OrderStatusDelivered:      {OrderStatusOutForDelivery},
	OrderStatusCancelled:      {OrderStatusPending, OrderStatusConfirmed},
	OrderStatusReturned:       {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, prev := range legalPredecessors[to] {
		if prev == from {
			return true
		}
	}
	return false
}

// Valid reports whether status is known.
func (s OrderStatus) Valid() bool {
	if s == OrderStatusPending {
		return true
	}
	_, ok := legalPredecessors[s]
	return ok
}

// PaymentMethod is how the customer settles the order.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodWallet, PaymentMethodCOD:
		return true
	}
	return false
}

// Online reports whether the method is settled through the payment provider.
func (m PaymentMethod) Online() bool {
	return m == PaymentMethodCard || m == PaymentMethodUPI
}

// PaymentStatus tracks settlement of the order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// OrderItem captures product data at purchase time.
type OrderItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is list price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineDiscount is the sale markdown for the whole line.
func (i OrderItem) LineDiscount() decimal.Decimal {
	if i.SalePrice.IsZero() || !i.SalePrice.LessThan(i.Price) {
		return decimal.Zero
	}
	return i.Price.Sub(i.SalePrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment is the payment sub-record of an order.
type Payment struct {
	Method            PaymentMethod `json:"method"`
	Status            PaymentStatus `json:"status"`
	ProviderOrderID   string        `json:"providerOrderId,omitempty"`
	ProviderPaymentID string        `json:"providerPaymentId,omitempty"`
	ProviderSignature string        `json:"providerSignature,omitempty"`
	PaidAt            *time.Time    `json:"paidAt,omitempty"`
}

// Tracking is the delivery sub-record of an order.
type Tracking struct {
	Location            string     `json:"location,omitempty"`
	EstimatedDeliveryAt *time.Time `json:"estimatedDeliveryAt,omitempty"`
	DeliveredAt         *time.Time `json:"deliveredAt,omitempty"`
}

// Order is a single checkout with its price, payment, and delivery state.
type Order struct {
	ID                 int64           `json:"-"`
	Number             string          `json:"orderId"`
	UserID             int64           `json:"userId"`
	Items              []OrderItem     `json:"items"`
	ShippingAddress    ShippingAddress `json:"shippingAddress"`
	Payment            Payment         `json:"payment"`
	Status             OrderStatus     `json:"status"`
	DeliveryPartnerID  *int64          `json:"deliveryPartnerId,omitempty"`
	Tracking           Tracking        `json:"tracking"`
	PriceSummary       PriceSummary    `json:"priceSummary"`
	CouponID           *int64          `json:"couponId,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	Rated              bool            `json:"rated"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// OwnedBy reports whether userID placed the order.
func (o *Order) OwnedBy(userID int64) bool {
	return o.UserID == userID
}

// AssignedTo reports whether the delivery partner userID handles the order.
func (o *Order) AssignedTo(userID int64) bool {
	return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == userID
}

// VisibleTo reports whether the caller may read the order.
func (o *Order) VisibleTo(id Identity) bool {
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleDelivery:
		return o.AssignedTo(id.UserID) || o.OwnedBy(id.UserID)
	default:
		return o.OwnedBy(id.UserID)
	}
}
