// Package pricing holds the side-effect free money arithmetic of checkout:
// price summaries and coupon discounts.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// Engine computes price summaries under store pricing rules.
type Engine struct {
	rules model.PricingRules
}

// NewEngine constructs Engine.
func NewEngine(rules model.PricingRules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the configured pricing rules.
func (e *Engine) Rules() model.PricingRules {
	return e.rules
}

// ItemsTotal sums list price times quantity using captured item prices.
func ItemsTotal(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemsDiscount sums sale markdowns of all lines.
func ItemsDiscount(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineDiscount())
	}
	return total
}

// DeliveryFee is waived once itemsTotal exceeds the free delivery threshold.
func (e *Engine) DeliveryFee(itemsTotal decimal.Decimal) decimal.Decimal {
	if itemsTotal.GreaterThan(e.rules.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return e.rules.DeliveryFee
}

// Tax is a percentage of itemsTotal rounded to the smallest currency unit.
func (e *Engine) Tax(itemsTotal decimal.Decimal) decimal.Decimal {
	return itemsTotal.Mul(e.rules.TaxRate).Round(2)
}

// ComputeSummary builds the price breakdown of an order.
//
// The coupon discount is subtracted first, then the wallet covers at most
// walletAvailable of what remains once delivery fee and tax are added.
// The grand total is never negative.
func (e *Engine) ComputeSummary(items []model.OrderItem, couponDiscount, walletAvailable decimal.Decimal) model.PriceSummary {
	itemsTotal := ItemsTotal(items)
	discount := ItemsDiscount(items)
	deliveryFee := e.DeliveryFee(itemsTotal)
	tax := e.Tax(itemsTotal)

	net := itemsTotal.Sub(discount)
	couponDiscount = clamp(couponDiscount, net)

	preWallet := net.Sub(couponDiscount).Add(deliveryFee).Add(tax)
	if preWallet.IsNegative() {
		preWallet = decimal.Zero
	}
	walletUsed := clamp(walletAvailable, preWallet)

	return model.PriceSummary{
		ItemsTotal:     itemsTotal,
		DeliveryFee:    deliveryFee,
		Tax:            tax,
		Discount:       discount,
		CouponDiscount: couponDiscount,
		WalletUsed:     walletUsed,
		GrandTotal:     preWallet.Sub(walletUsed),
	}
}

// clamp bounds v to [0, upper].
func clamp(v, upper decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	if v.GreaterThan(upper) {
		return upper
	}
	return v
}
