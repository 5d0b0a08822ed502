package model

import "github.com/shopspring/decimal"

// PriceSummary is the computed price breakdown embedded in an order.
type PriceSummary struct {
	ItemsTotal     decimal.Decimal `json:"itemsTotal"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Tax            decimal.Decimal `json:"tax"`
	Discount       decimal.Decimal `json:"discount"`
	CouponDiscount decimal.Decimal `json:"couponDiscount"`
	WalletUsed     decimal.Decimal `json:"walletUsed"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// PricingRules holds store-wide pricing configuration.
type PricingRules struct {
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	TaxRate               decimal.Decimal
	Currency              string
}
