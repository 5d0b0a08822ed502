package repository

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// UnitOfWork runs fn atomically. Every write made through tx is committed
// when fn returns nil and rolled back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the unit of work handed to core operations. It gives access to the
// stores whose rows are locked and written inside one transaction.
type Tx interface {
	Inventory() InventoryStore
	Coupons() CouponStore
	Wallets() WalletStore
	Orders() OrderStore
	Carts() CartStore

	// Savepoint runs fn in a nested scope. When fn fails only its own writes
	// are discarded and the enclosing unit of work stays usable.
	Savepoint(ctx context.Context, fn func(ctx context.Context) error) error
}

// InventoryStore reads and writes product stock under a row lock.
type InventoryStore interface {
	Lock(ctx context.Context, productID int64) (*model.Product, error)
	SetStock(ctx context.Context, productID int64, stock int) error
}

// CouponStore reads and writes coupon usage under a row lock.
type CouponStore interface {
	LockByCode(ctx context.Context, code string) (*model.Coupon, error)
	SetUsedCount(ctx context.Context, couponID int64, usedCount int) error
}

// WalletStore appends to a user's wallet ledger under a row lock.
type WalletStore interface {
	// Lock returns the wallet of userID, creating an empty one on first access.
	Lock(ctx context.Context, userID int64) (*model.Wallet, error)
	FindByReference(ctx context.Context, walletID int64, reference string) (*model.WalletTransaction, error)
	Append(ctx context.Context, wallet *model.Wallet, entry *model.WalletTransaction) error
}

// OrderStore writes orders and reads them under a row lock.
type OrderStore interface {
	Insert(ctx context.Context, order *model.Order) error
	LockByNumber(ctx context.Context, number string) (*model.Order, error)
	LockByProviderOrderID(ctx context.Context, providerOrderID string) (*model.Order, error)
	LockByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
}

// CartStore reads and clears the cart inside checkout.
type CartStore interface {
	Items(ctx context.Context, userID int64) ([]model.CartLine, error)
	Clear(ctx context.Context, userID int64) error
}
