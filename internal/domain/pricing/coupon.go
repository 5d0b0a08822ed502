package pricing

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// IsValid reports whether the coupon can be applied at now.
func IsValid(c *model.Coupon, now time.Time) bool {
	if c == nil || !c.State.IsActive() {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false
	}
	return true
}

// CalculateDiscount returns the discount the coupon grants on orderAmount.
// Zero means the coupon does not apply.
func CalculateDiscount(c *model.Coupon, orderAmount decimal.Decimal, now time.Time) decimal.Decimal {
	if !IsValid(c, now) || !orderAmount.IsPositive() || orderAmount.LessThan(c.MinOrderValue) {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch c.Type {
	case model.DiscountPercentage:
		amount = orderAmount.Mul(c.Value).Div(hundred)
		if c.MaxDiscount.Valid && amount.GreaterThan(c.MaxDiscount.Decimal) {
			amount = c.MaxDiscount.Decimal
		}
	case model.DiscountFixed:
		amount = decimal.Min(c.Value, orderAmount)
	default:
		return decimal.Zero
	}

	return clamp(amount, orderAmount).Round(2)
}

// EligibleAmount sums the net line totals the coupon scope covers.
func EligibleAmount(c *model.Coupon, items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if !inScope(c, item) {
			continue
		}
		total = total.Add(item.LineTotal().Sub(item.LineDiscount()))
	}
	return total
}

func inScope(c *model.Coupon, item model.OrderItem) bool {
	if slices.Contains(c.ExcludedProducts, item.ProductID) {
		return false
	}
	if len(c.Categories) == 0 && len(c.Products) == 0 {
		return true
	}
	return slices.Contains(c.Products, item.ProductID) || slices.Contains(c.Categories, item.Category)
}
