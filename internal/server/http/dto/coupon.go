package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponRequest creates a coupon.
type CouponRequest struct {
	Code             string              `json:"code"`
	Description      string              `json:"description"`
	DiscountType     string              `json:"discountType"`
	DiscountValue    decimal.Decimal     `json:"discountValue"`
	MaxDiscount      decimal.NullDecimal `json:"maxDiscount"`
	MinOrderValue    decimal.Decimal     `json:"minOrderValue"`
	ValidFrom        time.Time           `json:"validFrom"`
	ValidUntil       time.Time           `json:"validUntil"`
	UsageLimit       *int                `json:"usageLimit"`
	PerUserLimit     *int                `json:"perUserLimit"`
	Categories       []string            `json:"categories"`
	Products         []int64             `json:"products"`
	ExcludedProducts []int64             `json:"excludedProducts"`
}

// CouponResponse describes a coupon with its usage.
type CouponResponse struct {
	ID int64 `json:"id"`
	CouponRequest
	UsedCount int    `json:"usedCount"`
	State     string `json:"state"`
}

// CouponCheckRequest previews a coupon against an amount.
type CouponCheckRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// CouponCheckResponse is the discount a coupon would grant.
type CouponCheckResponse struct {
	Code         string          `json:"code"`
	DiscountType string          `json:"discountType"`
	Discount     decimal.Decimal `json:"discount"`
}
