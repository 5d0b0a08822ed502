package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// pgTx exposes the stores of one open transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Inventory() repository.InventoryStore { return &inventoryStore{db: t.tx} }
func (t *pgTx) Coupons() repository.CouponStore      { return &couponStore{db: t.tx} }
func (t *pgTx) Wallets() repository.WalletStore      { return &walletStore{db: t.tx} }
func (t *pgTx) Orders() repository.OrderStore        { return &orderStore{db: t.tx} }
func (t *pgTx) Carts() repository.CartStore          { return &cartStore{db: t.tx} }

// Savepoint wraps fn in SAVEPOINT / RELEASE, rolling back to the savepoint
// when fn fails.
func (t *pgTx) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(ctx); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

type inventoryStore struct {
	db querier
}

func (s *inventoryStore) Lock(ctx context.Context, productID int64) (*model.Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, productID))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (s *inventoryStore) SetStock(ctx context.Context, productID int64, stock int) error {
	if stock < 0 {
		return domainErrors.ErrProductUnavailable
	}
	return expectOne(s.db.Exec(ctx, `UPDATE products SET stock=$1, updated_at=NOW() WHERE id=$2`, stock, productID))
}

type couponStore struct {
	db querier
}

func (s *couponStore) LockByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := scanCoupon(s.db.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code=$1 FOR UPDATE`, code))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (s *couponStore) SetUsedCount(ctx context.Context, couponID int64, usedCount int) error {
	return expectOne(s.db.Exec(ctx, `UPDATE coupons SET used_count=$1 WHERE id=$2`, usedCount, couponID))
}

type walletStore struct {
	db querier
}

// Lock creates the wallet on first access and then takes its row lock.
func (s *walletStore) Lock(ctx context.Context, userID int64) (*model.Wallet, error) {
	if _, err := s.db.Exec(ctx, `INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return nil, err
	}
	w, err := scanWallet(s.db.QueryRow(ctx, `SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id=$1 FOR UPDATE`, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return w, nil
}

func (s *walletStore) FindByReference(ctx context.Context, walletID int64, reference string) (*model.WalletTransaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM wallet_transactions t WHERE t.wallet_id=$1 AND t.reference=$2`
	t, err := scanTransaction(s.db.QueryRow(ctx, query, walletID, reference))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// Append records entry and moves the wallet balance to entry.BalanceAfter.
// An empty reference is stored as NULL so it never collides.
func (s *walletStore) Append(ctx context.Context, wallet *model.Wallet, entry *model.WalletTransaction) error {
	if entry.BalanceAfter.IsNegative() {
		return domainErrors.ErrInsufficientBalance
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	const insert = `INSERT INTO wallet_transactions
                        (wallet_id, type, amount, balance_after, description, reference, order_number, metadata, created_at)
                    VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
                    RETURNING id`
	err := s.db.QueryRow(ctx, insert, wallet.ID, entry.Type, entry.Amount, entry.BalanceAfter, entry.Description,
		entry.Reference, entry.OrderNumber, entry.Metadata, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		return mapError(err)
	}
	entry.WalletID = wallet.ID
	if err := expectOne(s.db.Exec(ctx, `UPDATE wallets SET balance=$1, updated_at=$2 WHERE id=$3`, entry.BalanceAfter, entry.CreatedAt, wallet.ID)); err != nil {
		return err
	}
	wallet.Balance = entry.BalanceAfter
	wallet.UpdatedAt = entry.CreatedAt
	return nil
}

type orderStore struct {
	db querier
}

func (s *orderStore) Insert(ctx context.Context, o *model.Order) error {
	items, address, price, err := orderDocuments(o)
	if err != nil {
		return err
	}
	const query = `INSERT INTO orders (number, user_id, items, shipping_address,
                       payment_method, payment_status, provider_order_id, provider_payment_id, provider_signature, paid_at,
                       status, delivery_partner_id, location, estimated_delivery_at, delivered_at,
                       price_summary, coupon_id, cancellation_reason, rated, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
                   RETURNING id`
	err = s.db.QueryRow(ctx, query, o.Number, o.UserID, items, address,
		o.Payment.Method, o.Payment.Status, o.Payment.ProviderOrderID, o.Payment.ProviderPaymentID, o.Payment.ProviderSignature, o.Payment.PaidAt,
		o.Status, o.DeliveryPartnerID, o.Tracking.Location, o.Tracking.EstimatedDeliveryAt, o.Tracking.DeliveredAt,
		price, o.CouponID, o.CancellationReason, o.Rated, o.CreatedAt, o.UpdatedAt).Scan(&o.ID)
	return mapError(err)
}

func (s *orderStore) LockByNumber(ctx context.Context, number string) (*model.Order, error) {
	return s.lock(ctx, `SELECT `+orderColumns+` FROM orders WHERE number=$1 FOR UPDATE`, number)
}

func (s *orderStore) LockByProviderOrderID(ctx context.Context, providerOrderID string) (*model.Order, error) {
	return s.lock(ctx, `SELECT `+orderColumns+` FROM orders WHERE provider_order_id=$1 AND provider_order_id <> '' FOR UPDATE`, providerOrderID)
}

func (s *orderStore) LockByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Order, error) {
	return s.lock(ctx, `SELECT `+orderColumns+` FROM orders WHERE provider_payment_id=$1 AND provider_payment_id <> '' FOR UPDATE`, providerPaymentID)
}

func (s *orderStore) lock(ctx context.Context, query, arg string) (*model.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapError(err)
	}
	return o, nil
}

// Update rewrites every mutable column of o. Items and the shipping
// address are fixed at checkout.
func (s *orderStore) Update(ctx context.Context, o *model.Order) error {
	_, _, price, err := orderDocuments(o)
	if err != nil {
		return err
	}
	const query = `UPDATE orders SET
                       payment_status=$2, provider_order_id=$3, provider_payment_id=$4, provider_signature=$5, paid_at=$6,
                       status=$7, delivery_partner_id=$8, location=$9, estimated_delivery_at=$10, delivered_at=$11,
                       price_summary=$12, cancellation_reason=$13, rated=$14, updated_at=$15
                   WHERE number=$1`
	return expectOne(s.db.Exec(ctx, query, o.Number,
		o.Payment.Status, o.Payment.ProviderOrderID, o.Payment.ProviderPaymentID, o.Payment.ProviderSignature, o.Payment.PaidAt,
		o.Status, o.DeliveryPartnerID, o.Tracking.Location, o.Tracking.EstimatedDeliveryAt, o.Tracking.DeliveredAt,
		price, o.CancellationReason, o.Rated, o.UpdatedAt))
}

type cartStore struct {
	db querier
}

func (s *cartStore) Items(ctx context.Context, userID int64) ([]model.CartLine, error) {
	return cartItems(ctx, s.db, `SELECT product_id, quantity FROM cart_items WHERE user_id=$1 ORDER BY product_id FOR UPDATE`, userID)
}

func (s *cartStore) Clear(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
