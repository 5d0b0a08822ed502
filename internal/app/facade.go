package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/usecase"
)

// StoreFacade exposes the use cases to transports and background workers.
type StoreFacade struct {
	auth      *usecase.AuthUseCase
	catalog   *usecase.CatalogUseCase
	carts     *usecase.CartUseCase
	addresses *usecase.AddressUseCase
	coupons   *usecase.CouponUseCase
	wallet    *usecase.WalletLedger
	orders    *usecase.OrderWorkflow
	payments  *usecase.PaymentReconciler
}

// NewStoreFacade constructs StoreFacade.
func NewStoreFacade(
	auth *usecase.AuthUseCase,
	catalog *usecase.CatalogUseCase,
	carts *usecase.CartUseCase,
	addresses *usecase.AddressUseCase,
	coupons *usecase.CouponUseCase,
	wallet *usecase.WalletLedger,
	orders *usecase.OrderWorkflow,
	payments *usecase.PaymentReconciler,
) *StoreFacade {
	return &StoreFacade{
		auth:      auth,
		catalog:   catalog,
		carts:     carts,
		addresses: addresses,
		coupons:   coupons,
		wallet:    wallet,
		orders:    orders,
		payments:  payments,
	}
}

func (f *StoreFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *StoreFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *StoreFacade) ParseToken(token string) (model.Identity, error) {
	return f.auth.ParseToken(token)
}

func (f *StoreFacade) CreateUser(ctx context.Context, login, password string, role model.Role) (*model.User, error) {
	return f.auth.CreateUser(ctx, login, password, role)
}

func (f *StoreFacade) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return f.catalog.Products(ctx, filter)
}

func (f *StoreFacade) Product(ctx context.Context, id int64) (*model.Product, error) {
	return f.catalog.Product(ctx, id)
}

func (f *StoreFacade) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	return f.catalog.CreateProduct(ctx, p)
}

func (f *StoreFacade) Restock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	return f.catalog.Restock(ctx, id, quantity)
}

func (f *StoreFacade) RetireProduct(ctx context.Context, id int64) error {
	return f.catalog.Retire(ctx, id)
}

func (f *StoreFacade) Cart(ctx context.Context, userID int64) (*model.CartView, error) {
	return f.carts.View(ctx, userID)
}

func (f *StoreFacade) PutCartItem(ctx context.Context, userID int64, line model.CartLine) error {
	return f.carts.Put(ctx, userID, line)
}

func (f *StoreFacade) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	return f.carts.Remove(ctx, userID, productID)
}

func (f *StoreFacade) Addresses(ctx context.Context, userID int64) ([]model.Address, error) {
	return f.addresses.List(ctx, userID)
}

func (f *StoreFacade) CreateAddress(ctx context.Context, userID int64, addr model.Address) (*model.Address, error) {
	return f.addresses.Create(ctx, userID, addr)
}

func (f *StoreFacade) CreateCoupon(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	return f.coupons.Create(ctx, c)
}

func (f *StoreFacade) Coupons(ctx context.Context) ([]model.Coupon, error) {
	return f.coupons.List(ctx)
}

func (f *StoreFacade) RetireCoupon(ctx context.Context, code string) error {
	return f.coupons.Retire(ctx, code)
}

func (f *StoreFacade) CheckCoupon(ctx context.Context, code string, amount decimal.Decimal) (*model.CouponCheck, error) {
	return f.coupons.Check(ctx, code, amount)
}

func (f *StoreFacade) Wallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	return f.wallet.Balance(ctx, userID)
}

func (f *StoreFacade) WalletTransactions(ctx context.Context, userID int64, page, pageSize int) (*model.TransactionPage, error) {
	return f.wallet.TransactionHistory(ctx, userID, page, pageSize)
}

// CreditWallet tops up a wallet on behalf of an administrator. Entries
// without a reference get a random one and are never deduplicated.
func (f *StoreFacade) CreditWallet(ctx context.Context, userID int64, entry model.WalletEntry) (*model.WalletTransaction, error) {
	if entry.Reference == "" {
		entry.Reference = "admin-credit:" + uuid.NewString()
	}
	return f.wallet.Credit(ctx, userID, entry)
}

// CreateOrder places the order and, for card and UPI orders, opens the
// provider order right away.
func (f *StoreFacade) CreateOrder(ctx context.Context, userID int64, in model.CheckoutRequest) (*model.Order, error) {
	order, err := f.orders.CreateOrder(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	f.payments.OpenForCheckout(ctx, order)
	return order, nil
}

func (f *StoreFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *StoreFacade) Order(ctx context.Context, actor model.Identity, number string) (*model.Order, error) {
	return f.orders.Get(ctx, actor, number)
}

func (f *StoreFacade) CancelOrder(ctx context.Context, userID int64, number, reason string) (*model.Order, error) {
	return f.orders.CancelOrder(ctx, userID, number, reason)
}

func (f *StoreFacade) AllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, error) {
	return f.orders.List(ctx, status, page, pageSize)
}

func (f *StoreFacade) UpdateOrderStatus(ctx context.Context, actor model.Identity, number string, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateOrderStatus(ctx, actor, number, status)
}

func (f *StoreFacade) AssignDeliveryPartner(ctx context.Context, number string, partnerID int64) (*model.Order, error) {
	return f.orders.AssignDeliveryPartner(ctx, number, partnerID)
}

func (f *StoreFacade) UpdateDeliveryLocation(ctx context.Context, actor model.Identity, number, location string, eta *time.Time) (*model.Order, error) {
	return f.orders.UpdateDeliveryLocation(ctx, actor, number, location, eta)
}

func (f *StoreFacade) InitiatePayment(ctx context.Context, actor model.Identity, number string) (*model.PaymentIntent, error) {
	return f.payments.Initiate(ctx, actor, number)
}

func (f *StoreFacade) VerifyPayment(ctx context.Context, userID int64, in model.PaymentVerification) (*model.Order, error) {
	return f.payments.Verify(ctx, userID, in)
}

func (f *StoreFacade) HandlePaymentWebhook(ctx context.Context, body []byte, signature string) error {
	return f.payments.HandleWebhook(ctx, body, signature)
}

func (f *StoreFacade) AwaitingPayment(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	return f.payments.AwaitingPayment(ctx, cutoff, limit)
}

func (f *StoreFacade) ReconcilePayment(ctx context.Context, order model.Order) (bool, error) {
	return f.payments.Reconcile(ctx, order)
}
