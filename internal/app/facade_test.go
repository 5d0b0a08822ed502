package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/pricing"
	testhelpers "github.com/polkiloo/freshcart/internal/test"
	"github.com/polkiloo/freshcart/internal/usecase"
)

const goodSignature = "good-signature"

type facadeHarness struct {
	facade   *StoreFacade
	store    *testhelpers.MemoryStore
	provider *testhelpers.PaymentProviderStub
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFacade() *facadeHarness {
	store := testhelpers.NewMemoryStore()
	provider := &testhelpers.PaymentProviderStub{}
	events := &testhelpers.EventRecorder{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := pricing.NewEngine(model.PricingRules{
		FreeDeliveryThreshold: dec("500"),
		DeliveryFee:           dec("40"),
		TaxRate:               dec("0.05"),
		Currency:              "INR",
	})
	inventory := usecase.NewInventoryLedger()
	wallet := usecase.NewWalletLedger(store, store.Wallets())

	orders := usecase.NewOrderWorkflow(usecase.OrderWorkflowParams{
		UnitOfWork: store,
		Orders:     store.Orders(),
		Addresses:  store.Addresses(),
		Users:      store.Users(),
		Inventory:  inventory,
		Wallet:     wallet,
		Pricing:    engine,
		Events:     events,
		Logger:     logger,
	})
	payments := usecase.NewPaymentReconciler(usecase.PaymentReconcilerParams{
		UnitOfWork: store,
		Orders:     store.Orders(),
		Provider:   provider,
		Verifier:   testhelpers.VerifierStub{Valid: goodSignature},
		Dedup:      &testhelpers.DedupStub{},
		Wallet:     wallet,
		Pricing:    engine,
		Events:     events,
		Logger:     logger,
	})

	facade := NewStoreFacade(
		usecase.NewAuthUseCase(store.Users(), testhelpers.HasherStub{}, testhelpers.StrategyStub{}),
		usecase.NewCatalogUseCase(store.Products(), store, inventory),
		usecase.NewCartUseCase(store.Carts(), store.Products(), engine),
		usecase.NewAddressUseCase(store.Addresses()),
		usecase.NewCouponUseCase(store.Coupons()),
		wallet,
		orders,
		payments,
	)
	return &facadeHarness{facade: facade, store: store, provider: provider}
}

func (h *facadeHarness) user(t *testing.T, login string, role model.Role) model.Identity {
	t.Helper()
	u, err := h.facade.CreateUser(context.Background(), login, "password", role)
	if err != nil {
		t.Fatalf("create user %s: %v", login, err)
	}
	return model.Identity{UserID: u.ID, Role: u.Role}
}

func (h *facadeHarness) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := h.facade.CreateProduct(context.Background(), &model.Product{Name: name, Category: "produce", Unit: "kg", Price: dec(price), Stock: stock})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func shipping() *model.ShippingAddress {
	return &model.ShippingAddress{FullName: "Asha Rao", Line1: "12 Lake Road", City: "Pune", PostalCode: "411001"}
}

func TestStoreFacadeAuth(t *testing.T) {
	h := newFacade()
	ctx := context.Background()

	token, err := h.facade.Register(ctx, "user", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}
	if _, err := h.store.Users().GetByLogin(ctx, "user"); err != nil {
		t.Fatalf("user not stored: %v", err)
	}

	token, err = h.facade.Authenticate(ctx, "user", "password")
	if err != nil || token != "token" {
		t.Fatalf("unexpected authenticate result %q %v", token, err)
	}
	if _, err := h.facade.Authenticate(ctx, "user", "wrong"); !errors.Is(err, domainErrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	identity, err := h.facade.ParseToken("anything")
	if err != nil || identity.UserID != 1 {
		t.Fatalf("unexpected identity %+v err=%v", identity, err)
	}

	rider, err := h.facade.CreateUser(ctx, "rider", "password", model.RoleDelivery)
	if err != nil || rider.Role != model.RoleDelivery {
		t.Fatalf("unexpected rider %+v err=%v", rider, err)
	}
}

func TestStoreFacadeCatalogAndCart(t *testing.T) {
	h := newFacade()
	ctx := context.Background()
	alice := h.user(t, "alice", model.RoleCustomer)
	apples := h.product(t, "apples", "100", 5)

	listed, err := h.facade.Products(ctx, model.ProductFilter{})
	if err != nil || len(listed) != 1 {
		t.Fatalf("unexpected listing %+v err=%v", listed, err)
	}
	restocked, err := h.facade.Restock(ctx, apples.ID, 5)
	if err != nil || restocked.Stock != 10 {
		t.Fatalf("unexpected restock %+v err=%v", restocked, err)
	}

	if err := h.facade.PutCartItem(ctx, alice.UserID, model.CartLine{ProductID: apples.ID, Quantity: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	view, err := h.facade.Cart(ctx, alice.UserID)
	if err != nil || len(view.Entries) != 1 || !view.Summary.ItemsTotal.Equal(dec("200")) {
		t.Fatalf("unexpected cart %+v err=%v", view, err)
	}
	if err := h.facade.RemoveCartItem(ctx, alice.UserID, apples.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if err := h.facade.RetireProduct(ctx, apples.ID); err != nil {
		t.Fatalf("retire: %v", err)
	}
	if _, err := h.facade.Product(ctx, apples.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected retired product to be hidden, got %v", err)
	}
}

func TestStoreFacadeAddressesAndCoupons(t *testing.T) {
	h := newFacade()
	ctx := context.Background()
	alice := h.user(t, "alice", model.RoleCustomer)

	addr, err := h.facade.CreateAddress(ctx, alice.UserID, model.Address{FullName: "Asha", Line1: "12 Lake Road", City: "Pune", PostalCode: "411001"})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	book, err := h.facade.Addresses(ctx, alice.UserID)
	if err != nil || len(book) != 1 || book[0].ID != addr.ID {
		t.Fatalf("unexpected address book %+v err=%v", book, err)
	}

	now := time.Now()
	coupon, err := h.facade.CreateCoupon(ctx, &model.Coupon{
		Code:       "save10",
		Type:       model.DiscountPercentage,
		Value:      dec("10"),
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
	})
	if err != nil || coupon.Code != "SAVE10" {
		t.Fatalf("unexpected coupon %+v err=%v", coupon, err)
	}
	all, err := h.facade.Coupons(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("unexpected coupons %+v err=%v", all, err)
	}
	check, err := h.facade.CheckCoupon(ctx, "SAVE10", dec("250"))
	if err != nil || !check.Discount.Equal(dec("25")) {
		t.Fatalf("unexpected check %+v err=%v", check, err)
	}
	if err := h.facade.RetireCoupon(ctx, "SAVE10"); err != nil {
		t.Fatalf("retire coupon: %v", err)
	}
	if _, err := h.facade.CheckCoupon(ctx, "SAVE10", dec("250")); !errors.Is(err, domainErrors.ErrInvalidCoupon) {
		t.Fatalf("expected invalid coupon, got %v", err)
	}
}

func TestStoreFacadeWallet(t *testing.T) {
	h := newFacade()
	ctx := context.Background()
	alice := h.user(t, "alice", model.RoleCustomer)

	txn, err := h.facade.CreditWallet(ctx, alice.UserID, model.WalletEntry{Amount: dec("100"), Description: "goodwill"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if !strings.HasPrefix(txn.Reference, "admin-credit:") {
		t.Fatalf("expected generated reference, got %q", txn.Reference)
	}
	if _, err := h.facade.CreditWallet(ctx, alice.UserID, model.WalletEntry{Amount: dec("100"), Description: "goodwill"}); err != nil {
		t.Fatalf("second credit: %v", err)
	}

	wallet, err := h.facade.Wallet(ctx, alice.UserID)
	if err != nil || !wallet.Balance.Equal(dec("200")) {
		t.Fatalf("expected two distinct credits, got %+v err=%v", wallet, err)
	}
	history, err := h.facade.WalletTransactions(ctx, alice.UserID, 1, 10)
	if err != nil || history.Total != 2 {
		t.Fatalf("unexpected history %+v err=%v", history, err)
	}
}

func TestStoreFacadeOrderLifecycle(t *testing.T) {
	h := newFacade()
	ctx := context.Background()
	alice := h.user(t, "alice", model.RoleCustomer)
	admin := h.user(t, "root", model.RoleAdmin)
	rider := h.user(t, "rider", model.RoleDelivery)
	apples := h.product(t, "apples", "100", 5)

	order, err := h.facade.CreateOrder(ctx, alice.UserID, model.CheckoutRequest{
		Items:           []model.CartLine{{ProductID: apples.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   model.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	mine, err := h.facade.Orders(ctx, alice.UserID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("unexpected orders %+v err=%v", mine, err)
	}
	if _, err := h.facade.Order(ctx, alice, order.Number); err != nil {
		t.Fatalf("get order: %v", err)
	}
	all, err := h.facade.AllOrders(ctx, "", 1, 10)
	if err != nil || len(all) != 1 {
		t.Fatalf("unexpected admin listing %+v err=%v", all, err)
	}

	for _, status := range []model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusPreparing} {
		if _, err := h.facade.UpdateOrderStatus(ctx, admin, order.Number, status); err != nil {
			t.Fatalf("move to %s: %v", status, err)
		}
	}
	if _, err := h.facade.AssignDeliveryPartner(ctx, order.Number, rider.UserID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := h.facade.UpdateOrderStatus(ctx, rider, order.Number, model.OrderStatusOutForDelivery); err != nil {
		t.Fatalf("out for delivery: %v", err)
	}
	tracked, err := h.facade.UpdateDeliveryLocation(ctx, rider, order.Number, "Baner Road", nil)
	if err != nil || tracked.Tracking.Location != "Baner Road" {
		t.Fatalf("unexpected tracking %+v err=%v", tracked, err)
	}

	second, err := h.facade.CreateOrder(ctx, alice.UserID, model.CheckoutRequest{
		Items:           []model.CartLine{{ProductID: apples.ID, Quantity: 2}},
		ShippingAddress: shipping(),
		PaymentMethod:   model.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("create second order: %v", err)
	}
	cancelled, err := h.facade.CancelOrder(ctx, alice.UserID, second.Number, "changed mind")
	if err != nil || cancelled.Status != model.OrderStatusCancelled {
		t.Fatalf("unexpected cancel %+v err=%v", cancelled, err)
	}
	p, err := h.facade.Product(ctx, apples.ID)
	if err != nil || p.Stock != 4 {
		t.Fatalf("expected cancelled stock restored to 4, got %+v err=%v", p, err)
	}
}

func TestStoreFacadePayments(t *testing.T) {
	h := newFacade()
	ctx := context.Background()
	alice := h.user(t, "alice", model.RoleCustomer)
	apples := h.product(t, "apples", "600", 5)

	order, err := h.facade.CreateOrder(ctx, alice.UserID, model.CheckoutRequest{
		Items:           []model.CartLine{{ProductID: apples.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   model.PaymentMethodUPI,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Payment.ProviderOrderID != "order_"+order.Number {
		t.Fatalf("expected provider order opened at checkout, got %q", order.Payment.ProviderOrderID)
	}
	if n := h.provider.RequestCount(); n != 1 {
		t.Fatalf("expected one provider request, got %d", n)
	}
	stored, err := h.facade.Order(ctx, alice, order.Number)
	if err != nil || stored.Payment.ProviderOrderID != order.Payment.ProviderOrderID {
		t.Fatalf("expected stored provider order id, got %+v err=%v", stored, err)
	}

	intent, err := h.facade.InitiatePayment(ctx, alice, order.Number)
	if err != nil || intent.ProviderOrderID != "order_"+order.Number {
		t.Fatalf("unexpected intent %+v err=%v", intent, err)
	}
	if n := h.provider.RequestCount(); n != 1 {
		t.Fatalf("expected existing provider order to be reused, got %d requests", n)
	}

	awaiting, err := h.facade.AwaitingPayment(ctx, time.Now().Add(time.Minute), 10)
	if err != nil || len(awaiting) != 1 {
		t.Fatalf("unexpected awaiting orders %+v err=%v", awaiting, err)
	}
	settled, err := h.facade.ReconcilePayment(ctx, awaiting[0])
	if err != nil || settled {
		t.Fatalf("expected nothing to settle, got %v %v", settled, err)
	}

	if err := h.facade.HandlePaymentWebhook(ctx, []byte(`{}`), "forged"); !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature, got %v", err)
	}

	paid, err := h.facade.VerifyPayment(ctx, alice.UserID, model.PaymentVerification{
		ProviderOrderID:   intent.ProviderOrderID,
		ProviderPaymentID: "pay_1",
		Signature:         goodSignature,
	})
	if err != nil || paid.Status != model.OrderStatusConfirmed {
		t.Fatalf("unexpected verify result %+v err=%v", paid, err)
	}
}

func TestStoreFacadeCheckoutSurvivesProviderOutage(t *testing.T) {
	h := newFacade()
	ctx := context.Background()
	alice := h.user(t, "alice", model.RoleCustomer)
	apples := h.product(t, "apples", "600", 5)

	h.provider.CreateFn = func(context.Context, model.ProviderOrderRequest) (*model.ProviderOrder, error) {
		return nil, errors.New("provider unavailable")
	}
	order, err := h.facade.CreateOrder(ctx, alice.UserID, model.CheckoutRequest{
		Items:           []model.CartLine{{ProductID: apples.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   model.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("checkout must not fail on provider errors: %v", err)
	}
	if order.Payment.ProviderOrderID != "" || order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected order %s %+v", order.Status, order.Payment)
	}

	h.provider.CreateFn = nil
	intent, err := h.facade.InitiatePayment(ctx, alice, order.Number)
	if err != nil || intent.ProviderOrderID != "order_"+order.Number {
		t.Fatalf("unexpected retry %+v err=%v", intent, err)
	}

	cod, err := h.facade.CreateOrder(ctx, alice.UserID, model.CheckoutRequest{
		Items:           []model.CartLine{{ProductID: apples.ID, Quantity: 1}},
		ShippingAddress: shipping(),
		PaymentMethod:   model.PaymentMethodCOD,
	})
	if err != nil || cod.Payment.ProviderOrderID != "" {
		t.Fatalf("cash orders must not open a provider order: %+v err=%v", cod, err)
	}
	if n := h.provider.RequestCount(); n != 2 {
		t.Fatalf("expected two provider requests, got %d", n)
	}
}
