package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/pricing"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// CouponUseCase administers coupons and previews discounts.
type CouponUseCase struct {
	coupons repository.CouponRepository
	now     func() time.Time
}

// NewCouponUseCase constructs CouponUseCase.
func NewCouponUseCase(coupons repository.CouponRepository) *CouponUseCase {
	return &CouponUseCase{coupons: coupons, now: time.Now}
}

// Create validates and stores a coupon under its normalised code.
func (u *CouponUseCase) Create(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	c.Code = model.NormalizeCouponCode(c.Code)
	if c.Code == "" {
		return nil, fmt.Errorf("coupon code: %w", domainErrors.ErrInvalidInput)
	}
	switch c.Type {
	case model.DiscountPercentage:
		if c.Value.GreaterThan(hundred) {
			return nil, fmt.Errorf("percentage above 100: %w", domainErrors.ErrInvalidAmount)
		}
	case model.DiscountFixed:
		if c.MaxDiscount.Valid {
			return nil, fmt.Errorf("max discount applies to percentage coupons: %w", domainErrors.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("discount type %q: %w", c.Type, domainErrors.ErrInvalidInput)
	}
	if !c.Value.IsPositive() || c.MinOrderValue.IsNegative() {
		return nil, fmt.Errorf("coupon amounts: %w", domainErrors.ErrInvalidAmount)
	}
	if c.MaxDiscount.Valid && !c.MaxDiscount.Decimal.IsPositive() {
		return nil, fmt.Errorf("max discount: %w", domainErrors.ErrInvalidAmount)
	}
	if c.ValidUntil.IsZero() || !c.ValidUntil.After(c.ValidFrom) {
		return nil, fmt.Errorf("validity window: %w", domainErrors.ErrInvalidInput)
	}
	if (c.UsageLimit != nil && *c.UsageLimit < 1) || (c.PerUserLimit != nil && *c.PerUserLimit < 1) {
		return nil, fmt.Errorf("usage limits: %w", domainErrors.ErrInvalidInput)
	}

	c.UsedCount = 0
	c.State = model.LifecycleActive
	c.CreatedAt = u.now()
	if err := u.coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all coupons including retired ones.
func (u *CouponUseCase) List(ctx context.Context) ([]model.Coupon, error) {
	return u.coupons.List(ctx)
}

// Retire deactivates a coupon. Used counts are kept.
func (u *CouponUseCase) Retire(ctx context.Context, code string) error {
	return u.coupons.SetState(ctx, model.NormalizeCouponCode(code), model.LifecycleRetired)
}

// Check previews the discount of a coupon on amount without consuming it.
func (u *CouponUseCase) Check(ctx context.Context, code string, amount decimal.Decimal) (*model.CouponCheck, error) {
	if !amount.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}
	c, err := u.coupons.GetByCode(ctx, model.NormalizeCouponCode(code))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("coupon %q not found: %w", code, domainErrors.ErrInvalidCoupon)
		}
		return nil, err
	}

	now := u.now()
	if !pricing.IsValid(c, now) {
		return nil, fmt.Errorf("coupon %s is expired or exhausted: %w", c.Code, domainErrors.ErrInvalidCoupon)
	}
	discount := pricing.CalculateDiscount(c, amount, now)
	if !discount.IsPositive() {
		return nil, fmt.Errorf("minimum order value is %s: %w", c.MinOrderValue, domainErrors.ErrInvalidCoupon)
	}
	return &model.CouponCheck{Coupon: c, Discount: discount}, nil
}
