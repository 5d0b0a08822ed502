package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

const orderColumns = `id, number, user_id, items, shipping_address,
        payment_method, payment_status, provider_order_id, provider_payment_id, provider_signature, paid_at,
        status, delivery_partner_id, location, estimated_delivery_at, delivered_at,
        price_summary, coupon_id, cancellation_reason, rated, created_at, updated_at`

type orderRepository struct {
	db querier
}

// scanOrder decodes a row selected with orderColumns.
func scanOrder(row scanner) (*model.Order, error) {
	var (
		o                     model.Order
		items, address, price []byte
	)
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &items, &address,
		&o.Payment.Method, &o.Payment.Status, &o.Payment.ProviderOrderID, &o.Payment.ProviderPaymentID, &o.Payment.ProviderSignature, &o.Payment.PaidAt,
		&o.Status, &o.DeliveryPartnerID, &o.Tracking.Location, &o.Tracking.EstimatedDeliveryAt, &o.Tracking.DeliveredAt,
		&price, &o.CouponID, &o.CancellationReason, &o.Rated, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order %s items: %w", o.Number, err)
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode order %s address: %w", o.Number, err)
	}
	if err := json.Unmarshal(price, &o.PriceSummary); err != nil {
		return nil, fmt.Errorf("decode order %s price summary: %w", o.Number, err)
	}
	return &o, nil
}

func scanOrders(ctx context.Context, db querier, query string, args ...any) ([]model.Order, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// orderDocuments encodes the JSONB columns of o.
func orderDocuments(o *model.Order) (items, address, price []byte, err error) {
	if items, err = json.Marshal(nonNil(o.Items)); err != nil {
		return nil, nil, nil, fmt.Errorf("encode order items: %w", err)
	}
	if address, err = json.Marshal(o.ShippingAddress); err != nil {
		return nil, nil, nil, fmt.Errorf("encode order address: %w", err)
	}
	if price, err = json.Marshal(o.PriceSummary); err != nil {
		return nil, nil, nil, fmt.Errorf("encode order price summary: %w", err)
	}
	return items, address, price, nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE number=$1`, number))
	if err != nil {
		return nil, mapError(err)
	}
	return o, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return scanOrders(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY id DESC`, userID)
}

// List returns orders newest first, optionally narrowed to one status.
func (r *orderRepository) List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE ($1 = '' OR status = $1)
                   ORDER BY id DESC
                   LIMIT NULLIF($2, 0) OFFSET $3`
	return scanOrders(ctx, r.db, query, status, limit, offset)
}

// ListAwaitingPayment returns pending online orders that already have a
// provider order and were created before createdBefore, oldest first.
func (r *orderRepository) ListAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE status = 'pending'
                     AND payment_status = 'pending'
                     AND payment_method IN ('card', 'upi')
                     AND provider_order_id <> ''
                     AND created_at < $1
                   ORDER BY id
                   LIMIT $2`
	return scanOrders(ctx, r.db, query, createdBefore, limit)
}
