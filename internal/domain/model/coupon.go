package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a promotional discount code.
type Coupon struct {
	ID               int64
	Code             string
	Description      string
	Type             DiscountType
	Value            decimal.Decimal
	MaxDiscount      decimal.NullDecimal
	MinOrderValue    decimal.Decimal
	ValidFrom        time.Time
	ValidUntil       time.Time
	UsageLimit       *int
	UsedCount        int
	PerUserLimit     *int
	Categories       []string
	Products         []int64
	ExcludedProducts []int64
	State            Lifecycle
	CreatedAt        time.Time
}

// NormalizeCouponCode makes lookups case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Scoped reports whether the coupon narrows the items it applies to.
func (c *Coupon) Scoped() bool {
	return len(c.Categories) > 0 || len(c.Products) > 0 || len(c.ExcludedProducts) > 0
}
