package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/pricing"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newPricingEngine,
	NewInventoryLedger,
	NewWalletLedger,
	NewAuthUseCase,
	NewCatalogUseCase,
	NewCartUseCase,
	NewAddressUseCase,
	NewCouponUseCase,
	newOrderWorkflow,
	newPaymentReconciler,
)

func newPricingEngine(rules model.PricingRules) *pricing.Engine {
	return pricing.NewEngine(rules)
}

type orderWorkflowParams struct {
	fx.In

	UnitOfWork repository.UnitOfWork
	Orders     repository.OrderRepository
	Addresses  repository.AddressRepository
	Users      repository.UserRepository
	Inventory  *InventoryLedger
	Wallet     *WalletLedger
	Pricing    *pricing.Engine
	Events     EventPublisher
	Logger     *slog.Logger
}

func newOrderWorkflow(p orderWorkflowParams) *OrderWorkflow {
	return NewOrderWorkflow(OrderWorkflowParams{
		UnitOfWork: p.UnitOfWork,
		Orders:     p.Orders,
		Addresses:  p.Addresses,
		Users:      p.Users,
		Inventory:  p.Inventory,
		Wallet:     p.Wallet,
		Pricing:    p.Pricing,
		Events:     p.Events,
		Logger:     p.Logger,
	})
}

type paymentReconcilerParams struct {
	fx.In

	UnitOfWork repository.UnitOfWork
	Orders     repository.OrderRepository
	Provider   PaymentProvider
	Verifier   PaymentVerifier
	Dedup      Deduplicator
	Wallet     *WalletLedger
	Pricing    *pricing.Engine
	Events     EventPublisher
	Logger     *slog.Logger
}

func newPaymentReconciler(p paymentReconcilerParams) *PaymentReconciler {
	return NewPaymentReconciler(PaymentReconcilerParams{
		UnitOfWork: p.UnitOfWork,
		Orders:     p.Orders,
		Provider:   p.Provider,
		Verifier:   p.Verifier,
		Dedup:      p.Dedup,
		Wallet:     p.Wallet,
		Pricing:    p.Pricing,
		Events:     p.Events,
		Logger:     p.Logger,
	})
}
