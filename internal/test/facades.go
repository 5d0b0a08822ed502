package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// StoreFacadeStub provides controllable behaviour for every HTTP endpoint.
// Unset functions return a small successful result.
type StoreFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseTokenFn   func(string) (model.Identity, error)
	CreateUserFn   func(context.Context, string, string, model.Role) (*model.User, error)

	ProductsFn      func(context.Context, model.ProductFilter) ([]model.Product, error)
	ProductFn       func(context.Context, int64) (*model.Product, error)
	CreateProductFn func(context.Context, *model.Product) (*model.Product, error)
	RestockFn       func(context.Context, int64, int) (*model.Product, error)
	RetireProductFn func(context.Context, int64) error

	CartFn           func(context.Context, int64) (*model.CartView, error)
	PutCartItemFn    func(context.Context, int64, model.CartLine) error
	RemoveCartItemFn func(context.Context, int64, int64) error
	AddressesFn      func(context.Context, int64) ([]model.Address, error)
	CreateAddressFn  func(context.Context, int64, model.Address) (*model.Address, error)

	CreateCouponFn func(context.Context, *model.Coupon) (*model.Coupon, error)
	CouponsFn      func(context.Context) ([]model.Coupon, error)
	RetireCouponFn func(context.Context, string) error
	CheckCouponFn  func(context.Context, string, decimal.Decimal) (*model.CouponCheck, error)

	WalletFn       func(context.Context, int64) (*model.Wallet, error)
	TransactionsFn func(context.Context, int64, int, int) (*model.TransactionPage, error)
	CreditFn       func(context.Context, int64, model.WalletEntry) (*model.WalletTransaction, error)

	CreateOrderFn    func(context.Context, int64, model.CheckoutRequest) (*model.Order, error)
	OrdersFn         func(context.Context, int64) ([]model.Order, error)
	OrderFn          func(context.Context, model.Identity, string) (*model.Order, error)
	CancelOrderFn    func(context.Context, int64, string, string) (*model.Order, error)
	AllOrdersFn      func(context.Context, model.OrderStatus, int, int) ([]model.Order, error)
	UpdateStatusFn   func(context.Context, model.Identity, string, model.OrderStatus) (*model.Order, error)
	AssignFn         func(context.Context, string, int64) (*model.Order, error)
	UpdateLocationFn func(context.Context, model.Identity, string, string, *time.Time) (*model.Order, error)

	InitiatePaymentFn func(context.Context, model.Identity, string) (*model.PaymentIntent, error)
	VerifyPaymentFn   func(context.Context, int64, model.PaymentVerification) (*model.Order, error)
	WebhookFn         func(context.Context, []byte, string) error
}

func (s StoreFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

func (s StoreFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken resolves every token to customer 1 unless overridden.
func (s StoreFacadeStub) ParseToken(token string) (model.Identity, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return model.Identity{UserID: 1, Role: model.RoleCustomer}, nil
}

func (s StoreFacadeStub) CreateUser(ctx context.Context, login, password string, role model.Role) (*model.User, error) {
	if s.CreateUserFn != nil {
		return s.CreateUserFn(ctx, login, password, role)
	}
	return &model.User{ID: 2, Login: login, Role: role}, nil
}

func (s StoreFacadeStub) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, filter)
	}
	return []model.Product{{ID: 1, Name: "apples", Price: decimal.NewFromInt(100), Stock: 5, State: model.LifecycleActive}}, nil
}

func (s StoreFacadeStub) Product(ctx context.Context, id int64) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	return &model.Product{ID: id, Name: "apples", Price: decimal.NewFromInt(100), State: model.LifecycleActive}, nil
}

func (s StoreFacadeStub) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	if s.CreateProductFn != nil {
		return s.CreateProductFn(ctx, p)
	}
	created := *p
	created.ID = 1
	created.State = model.LifecycleActive
	return &created, nil
}

func (s StoreFacadeStub) Restock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if s.RestockFn != nil {
		return s.RestockFn(ctx, id, quantity)
	}
	return &model.Product{ID: id, Stock: quantity, State: model.LifecycleActive}, nil
}

func (s StoreFacadeStub) RetireProduct(ctx context.Context, id int64) error {
	if s.RetireProductFn != nil {
		return s.RetireProductFn(ctx, id)
	}
	return nil
}

func (s StoreFacadeStub) Cart(ctx context.Context, userID int64) (*model.CartView, error) {
	if s.CartFn != nil {
		return s.CartFn(ctx, userID)
	}
	return &model.CartView{}, nil
}

func (s StoreFacadeStub) PutCartItem(ctx context.Context, userID int64, line model.CartLine) error {
	if s.PutCartItemFn != nil {
		return s.PutCartItemFn(ctx, userID, line)
	}
	return nil
}

func (s StoreFacadeStub) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	if s.RemoveCartItemFn != nil {
		return s.RemoveCartItemFn(ctx, userID, productID)
	}
	return nil
}

func (s StoreFacadeStub) Addresses(ctx context.Context, userID int64) ([]model.Address, error) {
	if s.AddressesFn != nil {
		return s.AddressesFn(ctx, userID)
	}
	return nil, nil
}

func (s StoreFacadeStub) CreateAddress(ctx context.Context, userID int64, addr model.Address) (*model.Address, error) {
	if s.CreateAddressFn != nil {
		return s.CreateAddressFn(ctx, userID, addr)
	}
	addr.ID = 1
	addr.UserID = userID
	return &addr, nil
}

func (s StoreFacadeStub) CreateCoupon(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	if s.CreateCouponFn != nil {
		return s.CreateCouponFn(ctx, c)
	}
	created := *c
	created.ID = 1
	created.Code = model.NormalizeCouponCode(c.Code)
	created.State = model.LifecycleActive
	return &created, nil
}

func (s StoreFacadeStub) Coupons(ctx context.Context) ([]model.Coupon, error) {
	if s.CouponsFn != nil {
		return s.CouponsFn(ctx)
	}
	return nil, nil
}

func (s StoreFacadeStub) RetireCoupon(ctx context.Context, code string) error {
	if s.RetireCouponFn != nil {
		return s.RetireCouponFn(ctx, code)
	}
	return nil
}

func (s StoreFacadeStub) CheckCoupon(ctx context.Context, code string, amount decimal.Decimal) (*model.CouponCheck, error) {
	if s.CheckCouponFn != nil {
		return s.CheckCouponFn(ctx, code, amount)
	}
	return &model.CouponCheck{
		Coupon:   &model.Coupon{Code: model.NormalizeCouponCode(code), Type: model.DiscountFixed},
		Discount: decimal.Zero,
	}, nil
}

func (s StoreFacadeStub) Wallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	if s.WalletFn != nil {
		return s.WalletFn(ctx, userID)
	}
	return &model.Wallet{UserID: userID, Balance: decimal.Zero}, nil
}

func (s StoreFacadeStub) WalletTransactions(ctx context.Context, userID int64, page, pageSize int) (*model.TransactionPage, error) {
	if s.TransactionsFn != nil {
		return s.TransactionsFn(ctx, userID, page, pageSize)
	}
	return &model.TransactionPage{Page: 1, PageSize: 20}, nil
}

func (s StoreFacadeStub) CreditWallet(ctx context.Context, userID int64, entry model.WalletEntry) (*model.WalletTransaction, error) {
	if s.CreditFn != nil {
		return s.CreditFn(ctx, userID, entry)
	}
	return &model.WalletTransaction{ID: 1, Type: entry.Type, Amount: entry.Amount, BalanceAfter: entry.Amount, Reference: entry.Reference}, nil
}

func (s StoreFacadeStub) CreateOrder(ctx context.Context, userID int64, in model.CheckoutRequest) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, userID, in)
	}
	return &model.Order{Number: "ORD1", UserID: userID, Status: model.OrderStatusPending, Payment: model.Payment{Method: in.PaymentMethod}}, nil
}

func (s StoreFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{Number: "ORD1", UserID: userID}}, nil
}

func (s StoreFacadeStub) Order(ctx context.Context, actor model.Identity, number string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, actor, number)
	}
	return &model.Order{Number: number, UserID: actor.UserID}, nil
}

func (s StoreFacadeStub) CancelOrder(ctx context.Context, userID int64, number, reason string) (*model.Order, error) {
	if s.CancelOrderFn != nil {
		return s.CancelOrderFn(ctx, userID, number, reason)
	}
	return &model.Order{Number: number, UserID: userID, Status: model.OrderStatusCancelled, CancellationReason: reason}, nil
}

func (s StoreFacadeStub) AllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, error) {
	if s.AllOrdersFn != nil {
		return s.AllOrdersFn(ctx, status, page, pageSize)
	}
	return []model.Order{}, nil
}

func (s StoreFacadeStub) UpdateOrderStatus(ctx context.Context, actor model.Identity, number string, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, actor, number, status)
	}
	return &model.Order{Number: number, Status: status}, nil
}

func (s StoreFacadeStub) AssignDeliveryPartner(ctx context.Context, number string, partnerID int64) (*model.Order, error) {
	if s.AssignFn != nil {
		return s.AssignFn(ctx, number, partnerID)
	}
	return &model.Order{Number: number, DeliveryPartnerID: &partnerID}, nil
}

func (s StoreFacadeStub) UpdateDeliveryLocation(ctx context.Context, actor model.Identity, number, location string, eta *time.Time) (*model.Order, error) {
	if s.UpdateLocationFn != nil {
		return s.UpdateLocationFn(ctx, actor, number, location, eta)
	}
	return &model.Order{Number: number, Tracking: model.Tracking{Location: location, EstimatedDeliveryAt: eta}}, nil
}

func (s StoreFacadeStub) InitiatePayment(ctx context.Context, actor model.Identity, number string) (*model.PaymentIntent, error) {
	if s.InitiatePaymentFn != nil {
		return s.InitiatePaymentFn(ctx, actor, number)
	}
	return &model.PaymentIntent{OrderNumber: number, ProviderOrderID: "order_1", Currency: "INR", KeyID: "key"}, nil
}

func (s StoreFacadeStub) VerifyPayment(ctx context.Context, userID int64, in model.PaymentVerification) (*model.Order, error) {
	if s.VerifyPaymentFn != nil {
		return s.VerifyPaymentFn(ctx, userID, in)
	}
	return &model.Order{Number: "ORD1", UserID: userID, Status: model.OrderStatusConfirmed}, nil
}

func (s StoreFacadeStub) HandlePaymentWebhook(ctx context.Context, body []byte, signature string) error {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, body, signature)
	}
	return nil
}

// PingerStub reports the configured error.
type PingerStub struct {
	Err error
}

func (p PingerStub) Ping(context.Context) error {
	return p.Err
}

// WorkerFacadeStub mimics the payment poller's view of the application.
type WorkerFacadeStub struct {
	// Batches are returned by successive AwaitingPayment calls, then nothing.
	Batches     [][]model.Order
	AwaitingFn  func(context.Context, time.Time, int) ([]model.Order, error)
	ReconcileFn func(context.Context, model.Order) (bool, error)

	mu         sync.Mutex
	calls      int
	Cutoffs    []time.Time
	Reconciled []string
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// AwaitingPayment returns batches from the configured queue.
func (s *WorkerFacadeStub) AwaitingPayment(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	s.Cutoffs = append(s.Cutoffs, cutoff)
	call := s.calls
	s.calls++
	s.mu.Unlock()

	if s.AwaitingFn != nil {
		return s.AwaitingFn(ctx, cutoff, limit)
	}
	if call < len(s.Batches) {
		return s.Batches[call], nil
	}
	return nil, nil
}

// ReconcilePayment records the order and reports it settled unless overridden.
func (s *WorkerFacadeStub) ReconcilePayment(ctx context.Context, order model.Order) (bool, error) {
	if s.ReconcileFn != nil {
		settled, err := s.ReconcileFn(ctx, order)
		if err == nil {
			s.record(order.Number)
		}
		return settled, err
	}
	s.record(order.Number)
	return true, nil
}

func (s *WorkerFacadeStub) record(number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reconciled = append(s.Reconciled, number)
}
