package postgres

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

const couponColumns = `id, code, description, discount_type, discount_value, max_discount, min_order_value,
        valid_from, valid_until, usage_limit, used_count, per_user_limit,
        categories, products, excluded_products, state, created_at`

type couponRepository struct {
	db querier
}

func scanCoupon(row scanner) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Description, &c.Type, &c.Value, &c.MaxDiscount, &c.MinOrderValue,
		&c.ValidFrom, &c.ValidUntil, &c.UsageLimit, &c.UsedCount, &c.PerUserLimit,
		&c.Categories, &c.Products, &c.ExcludedProducts, &c.State, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	const query = `INSERT INTO coupons (code, description, discount_type, discount_value, max_discount, min_order_value,
                       valid_from, valid_until, usage_limit, per_user_limit, categories, products, excluded_products, state)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
                   RETURNING id, created_at`
	if c.State == "" {
		c.State = model.LifecycleActive
	}
	err := r.db.QueryRow(ctx, query, c.Code, c.Description, c.Type, c.Value, c.MaxDiscount, c.MinOrderValue,
		c.ValidFrom, c.ValidUntil, c.UsageLimit, c.PerUserLimit,
		nonNil(c.Categories), nonNil(c.Products), nonNil(c.ExcludedProducts), c.State).
		Scan(&c.ID, &c.CreatedAt)
	return mapError(err)
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := scanCoupon(r.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code=$1`, code))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *couponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.db.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *couponRepository) SetState(ctx context.Context, code string, state model.Lifecycle) error {
	return expectOne(r.db.Exec(ctx, `UPDATE coupons SET state=$1 WHERE code=$2`, state, code))
}
