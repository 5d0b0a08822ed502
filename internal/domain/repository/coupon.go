package repository

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// CouponRepository describes coupon administration.
type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	SetState(ctx context.Context, code string, state model.Lifecycle) error
}
