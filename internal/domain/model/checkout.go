package model

import "github.com/shopspring/decimal"

// CheckoutRequest describes an order placement.
type CheckoutRequest struct {
	// Items is read from the cart when empty.
	Items           []CartLine
	AddressID       int64
	ShippingAddress *ShippingAddress
	PaymentMethod   PaymentMethod
	CouponCode      string
	UseWallet       bool
}

// PaymentVerification is the provider triple a client reports after checkout.
type PaymentVerification struct {
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
}

// CartEntry is a cart line resolved against the catalog.
type CartEntry struct {
	Item      OrderItem
	Available bool
}

// CartView is the cart with a price preview of its available lines.
type CartView struct {
	Entries []CartEntry
	Summary PriceSummary
}

// CouponCheck is the preview of a coupon against an amount.
type CouponCheck struct {
	Coupon   *Coupon
	Discount decimal.Decimal
}
