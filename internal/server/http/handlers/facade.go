package handlers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (model.Identity, error)
	CreateUser(ctx context.Context, login, password string, role model.Role) (*model.User, error)
}

// CatalogFacade exposes products and stock.
type CatalogFacade interface {
	Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	Restock(ctx context.Context, id int64, quantity int) (*model.Product, error)
	RetireProduct(ctx context.Context, id int64) error
}

// CartFacade manages the caller's cart.
type CartFacade interface {
	Cart(ctx context.Context, userID int64) (*model.CartView, error)
	PutCartItem(ctx context.Context, userID int64, line model.CartLine) error
	RemoveCartItem(ctx context.Context, userID, productID int64) error
}

// AddressFacade manages the caller's address book.
type AddressFacade interface {
	Addresses(ctx context.Context, userID int64) ([]model.Address, error)
	CreateAddress(ctx context.Context, userID int64, addr model.Address) (*model.Address, error)
}

// CouponFacade exposes coupon administration and preview.
type CouponFacade interface {
	CreateCoupon(ctx context.Context, c *model.Coupon) (*model.Coupon, error)
	Coupons(ctx context.Context) ([]model.Coupon, error)
	RetireCoupon(ctx context.Context, code string) error
	CheckCoupon(ctx context.Context, code string, amount decimal.Decimal) (*model.CouponCheck, error)
}

// WalletFacade provides wallet balance and history.
type WalletFacade interface {
	Wallet(ctx context.Context, userID int64) (*model.Wallet, error)
	WalletTransactions(ctx context.Context, userID int64, page, pageSize int) (*model.TransactionPage, error)
	CreditWallet(ctx context.Context, userID int64, entry model.WalletEntry) (*model.WalletTransaction, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, in model.CheckoutRequest) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, actor model.Identity, number string) (*model.Order, error)
	CancelOrder(ctx context.Context, userID int64, number, reason string) (*model.Order, error)
	AllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, actor model.Identity, number string, status model.OrderStatus) (*model.Order, error)
	AssignDeliveryPartner(ctx context.Context, number string, partnerID int64) (*model.Order, error)
	UpdateDeliveryLocation(ctx context.Context, actor model.Identity, number, location string, eta *time.Time) (*model.Order, error)
}

// PaymentFacade drives online payments.
type PaymentFacade interface {
	InitiatePayment(ctx context.Context, actor model.Identity, number string) (*model.PaymentIntent, error)
	VerifyPayment(ctx context.Context, userID int64, in model.PaymentVerification) (*model.Order, error)
	HandlePaymentWebhook(ctx context.Context, body []byte, signature string) error
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	AuthFacade
	CatalogFacade
	CartFacade
	AddressFacade
	CouponFacade
	WalletFacade
	OrderFacade
	PaymentFacade
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
