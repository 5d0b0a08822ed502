package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/pricing"
	testhelpers "github.com/polkiloo/freshcart/internal/test"
)

const validSignature = "good-signature"

type fixture struct {
	store    *testhelpers.MemoryStore
	events   *testhelpers.EventRecorder
	provider *testhelpers.PaymentProviderStub
	dedup    *testhelpers.DedupStub
	verifier testhelpers.VerifierStub

	inventory *InventoryLedger
	wallet    *WalletLedger
	orders    *OrderWorkflow
	payments  *PaymentReconciler
	engine    *pricing.Engine
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultRules() model.PricingRules {
	return model.PricingRules{
		FreeDeliveryThreshold: dec("500"),
		DeliveryFee:           dec("40"),
		TaxRate:               dec("0.05"),
		Currency:              "INR",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testhelpers.NewMemoryStore()
	f := &fixture{
		store:     store,
		events:    &testhelpers.EventRecorder{},
		provider:  &testhelpers.PaymentProviderStub{},
		dedup:     &testhelpers.DedupStub{},
		verifier:  testhelpers.VerifierStub{Valid: validSignature},
		inventory: NewInventoryLedger(),
		engine:    pricing.NewEngine(defaultRules()),
	}
	f.wallet = NewWalletLedger(store, store.Wallets())
	f.orders = NewOrderWorkflow(OrderWorkflowParams{
		UnitOfWork: store,
		Orders:     store.Orders(),
		Addresses:  store.Addresses(),
		Users:      store.Users(),
		Inventory:  f.inventory,
		Wallet:     f.wallet,
		Pricing:    f.engine,
		Events:     f.events,
		Logger:     discardLogger(),
	})
	f.payments = f.newReconciler()
	return f
}

func (f *fixture) newReconciler() *PaymentReconciler {
	return NewPaymentReconciler(PaymentReconcilerParams{
		UnitOfWork: f.store,
		Orders:     f.store.Orders(),
		Provider:   f.provider,
		Verifier:   f.verifier,
		Dedup:      f.dedup,
		Wallet:     f.wallet,
		Pricing:    f.engine,
		Events:     f.events,
		Logger:     discardLogger(),
	})
}

func (f *fixture) user(t *testing.T, login string, role model.Role) model.Identity {
	t.Helper()
	u, err := f.store.Users().Create(context.Background(), login, "hash", role)
	if err != nil {
		t.Fatalf("create user %s: %v", login, err)
	}
	return model.Identity{UserID: u.ID, Role: u.Role}
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Category: "produce", Unit: "kg", Price: dec(price), Stock: stock, State: model.LifecycleActive}
	if err := f.store.Products().Create(context.Background(), p); err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func (f *fixture) stock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	if err != nil {
		t.Fatalf("get product %d: %v", productID, err)
	}
	return p.Stock
}

func (f *fixture) credit(t *testing.T, userID int64, amount string) {
	t.Helper()
	_, err := f.wallet.Credit(context.Background(), userID, model.WalletEntry{
		Amount:      dec(amount),
		Description: "top up",
		Reference:   fmt.Sprintf("topup:%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("credit wallet: %v", err)
	}
}

func (f *fixture) balance(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	w, err := f.wallet.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("wallet balance: %v", err)
	}
	return w.Balance
}

func (f *fixture) coupon(t *testing.T, c model.Coupon) *model.Coupon {
	t.Helper()
	now := time.Now()
	if c.ValidFrom.IsZero() {
		c.ValidFrom = now.Add(-time.Hour)
	}
	if c.ValidUntil.IsZero() {
		c.ValidUntil = now.Add(24 * time.Hour)
	}
	c.Code = model.NormalizeCouponCode(c.Code)
	c.State = model.LifecycleActive
	if err := f.store.Coupons().Create(context.Background(), &c); err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	return &c
}

func (f *fixture) usedCount(t *testing.T, code string) int {
	t.Helper()
	c, err := f.store.Coupons().GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("get coupon: %v", err)
	}
	return c.UsedCount
}

func (f *fixture) order(t *testing.T, number string) *model.Order {
	t.Helper()
	o, err := f.store.Orders().GetByNumber(context.Background(), number)
	if err != nil {
		t.Fatalf("get order %s: %v", number, err)
	}
	return o
}

func homeAddress() *model.ShippingAddress {
	return &model.ShippingAddress{FullName: "Asha Rao", Phone: "9000000000", Line1: "12 Lake Road", City: "Pune", State: "MH", PostalCode: "411001"}
}

func checkout(method model.PaymentMethod, lines ...model.CartLine) model.CheckoutRequest {
	return model.CheckoutRequest{Items: lines, ShippingAddress: homeAddress(), PaymentMethod: method}
}

func line(productID int64, qty int) model.CartLine {
	return model.CartLine{ProductID: productID, Quantity: qty}
}

func intPtr(v int) *int { return &v }

func decimalCap(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
