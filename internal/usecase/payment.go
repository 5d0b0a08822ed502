package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/pricing"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// PaymentProvider is the remote payment API.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, req model.ProviderOrderRequest) (*model.ProviderOrder, error)
	FetchPayments(ctx context.Context, providerOrderID string) ([]model.ProviderPayment, error)
	KeyID() string
}

// PaymentVerifier checks provider signatures and decodes webhook envelopes.
type PaymentVerifier interface {
	VerifyPayment(providerOrderID, providerPaymentID, signature string) error
	VerifyWebhook(body []byte, signature string) error
	DecodeWebhook(body []byte) (*model.WebhookEvent, error)
}

// Deduplicator claims keys of external deliveries that must be handled once.
// A claim is short lived until Confirm records the delivery as handled.
type Deduplicator interface {
	Claim(ctx context.Context, key string) (bool, error)
	Confirm(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

// PaymentReconciler drives orders to their payment outcome from client
// verification, provider webhooks and polling.
type PaymentReconciler struct {
	uow      repository.UnitOfWork
	orders   repository.OrderRepository
	provider PaymentProvider
	verifier PaymentVerifier
	dedup    Deduplicator
	wallet   *WalletLedger
	currency string
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// PaymentReconcilerParams groups PaymentReconciler collaborators.
type PaymentReconcilerParams struct {
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

// NewPaymentReconciler constructs PaymentReconciler.
func NewPaymentReconciler(p PaymentReconcilerParams) *PaymentReconciler {
	return &PaymentReconciler{
		uow:      p.UnitOfWork,
		orders:   p.Orders,
		provider: p.Provider,
		verifier: p.Verifier,
		dedup:    p.Dedup,
		wallet:   p.Wallet,
		currency: p.Pricing.Rules().Currency,
		events:   p.Events,
		logger:   p.Logger,
		now:      time.Now,
	}
}

// Initiate opens a provider order for an unpaid online order. A provider order
// that already exists is reused.
func (r *PaymentReconciler) Initiate(ctx context.Context, actor model.Identity, number string) (*model.PaymentIntent, error) {
	order, err := r.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, domainErrors.ErrUnauthorized
	}
	if !order.Payment.Method.Online() ||
		order.Payment.Status != model.PaymentStatusPending ||
		order.Status != model.OrderStatusPending ||
		!order.PriceSummary.GrandTotal.IsPositive() {
		return nil, fmt.Errorf("order %s does not await online payment: %w", number, domainErrors.ErrInvalidTransition)
	}
	if order.Payment.ProviderOrderID != "" {
		return r.intent(order), nil
	}

	remote, err := r.provider.CreateOrder(ctx, model.ProviderOrderRequest{
		Amount:   order.PriceSummary.GrandTotal,
		Currency: r.currency,
		Receipt:  order.Number,
	})
	if err != nil {
		return nil, fmt.Errorf("create provider order: %w", err)
	}

	err = r.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		locked, err := tx.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		order = locked
		if order.Payment.ProviderOrderID != "" {
			return nil
		}
		order.Payment.ProviderOrderID = remote.ID
		order.UpdatedAt = r.now()
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "payment initiated",
		slog.String("order", order.Number),
		slog.String("provider_order_id", order.Payment.ProviderOrderID),
	)
	return r.intent(order), nil
}

// OpenForCheckout opens the provider order of a freshly created online order
// with an amount due. Failures are logged and leave the order pending; the
// customer can retry through Initiate.
func (r *PaymentReconciler) OpenForCheckout(ctx context.Context, order *model.Order) {
	if !order.Payment.Method.Online() || !order.PriceSummary.GrandTotal.IsPositive() ||
		order.Payment.ProviderOrderID != "" {
		return
	}
	owner := model.Identity{UserID: order.UserID, Role: model.RoleCustomer}
	intent, err := r.Initiate(ctx, owner, order.Number)
	if err != nil {
		r.logger.WarnContext(ctx, "payment initiation after checkout failed",
			slog.String("order", order.Number),
			slog.String("error", err.Error()),
		)
		return
	}
	order.Payment.ProviderOrderID = intent.ProviderOrderID
}

func (r *PaymentReconciler) intent(order *model.Order) *model.PaymentIntent {
	return &model.PaymentIntent{
		OrderNumber:     order.Number,
		ProviderOrderID: order.Payment.ProviderOrderID,
		Amount:          order.PriceSummary.GrandTotal,
		Currency:        r.currency,
		KeyID:           r.provider.KeyID(),
	}
}

// Verify settles an order from the provider triple returned to the client.
func (r *PaymentReconciler) Verify(ctx context.Context, userID int64, in model.PaymentVerification) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "payment.verify", trace.WithAttributes(attribute.String("provider.order_id", in.ProviderOrderID)))
	defer func() { endSpan(span, err) }()

	if in.ProviderOrderID == "" || in.ProviderPaymentID == "" || in.Signature == "" {
		return nil, domainErrors.ErrInvalidSignature
	}
	if err := r.verifier.VerifyPayment(in.ProviderOrderID, in.ProviderPaymentID, in.Signature); err != nil {
		return nil, err
	}

	var advanced bool
	err = r.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().LockByProviderOrderID(ctx, in.ProviderOrderID)
		if err != nil {
			return err
		}
		if !order.OwnedBy(userID) {
			return domainErrors.ErrUnauthorized
		}
		advanced, err = r.complete(ctx, tx, order, in.ProviderPaymentID, in.Signature)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.announce(ctx, order, advanced)
	return order, nil
}

// HandleWebhook processes a signed provider event. A bad signature or body is
// returned before any order is read. Processing failures are logged and the
// delivery is acknowledged, provider retries are safe to replay.
func (r *PaymentReconciler) HandleWebhook(ctx context.Context, body []byte, signature string) (err error) {
	ctx, span := tracer.Start(ctx, "payment.webhook")
	defer func() { endSpan(span, err) }()

	if signature == "" {
		return domainErrors.ErrInvalidSignature
	}
	if err := r.verifier.VerifyWebhook(body, signature); err != nil {
		return err
	}
	event, err := r.verifier.DecodeWebhook(body)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("webhook.event", string(event.Kind)))

	sum := sha256.Sum256(body)
	key := "webhook:" + hex.EncodeToString(sum[:])
	claimed, claimErr := r.dedup.Claim(ctx, key)
	switch {
	case claimErr != nil:
		r.logger.WarnContext(ctx, "webhook dedup unavailable", slog.String("error", claimErr.Error()))
	case !claimed:
		r.logger.InfoContext(ctx, "webhook already processed", slog.String("event", string(event.Kind)))
		return nil
	}

	if procErr := r.process(ctx, event); procErr != nil {
		r.logger.ErrorContext(ctx, "webhook processing failed",
			slog.String("event", string(event.Kind)),
			slog.String("provider_order_id", event.ProviderOrderID),
			slog.String("payment_id", event.PaymentID),
			slog.String("error", procErr.Error()),
		)
		if claimErr == nil {
			if err := r.dedup.Release(ctx, key); err != nil {
				r.logger.WarnContext(ctx, "webhook dedup release failed", slog.String("error", err.Error()))
			}
		}
		return nil
	}
	if claimErr == nil {
		if err := r.dedup.Confirm(ctx, key); err != nil {
			r.logger.WarnContext(ctx, "webhook dedup confirm failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (r *PaymentReconciler) process(ctx context.Context, event *model.WebhookEvent) error {
	switch event.Kind {
	case model.WebhookPaymentCaptured:
		return r.settle(ctx, event, func(ctx context.Context, tx repository.Tx, order *model.Order) (bool, error) {
			return r.complete(ctx, tx, order, event.PaymentID, "")
		})
	case model.WebhookPaymentFailed:
		return r.settle(ctx, event, r.fail(event.PaymentID))
	case model.WebhookRefundProcessed:
		return r.settle(ctx, event, r.refund(event))
	default:
		r.logger.InfoContext(ctx, "webhook event ignored", slog.String("event", string(event.Kind)))
		return nil
	}
}

type settleFunc func(ctx context.Context, tx repository.Tx, order *model.Order) (bool, error)

// settle locks the order an event refers to, applies fn and announces the outcome.
func (r *PaymentReconciler) settle(ctx context.Context, event *model.WebhookEvent, fn settleFunc) error {
	var (
		order    *model.Order
		advanced bool
		changed  bool
	)
	err := r.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = lockForEvent(ctx, tx, event)
		if err != nil {
			return err
		}
		before := order.Payment.Status
		advanced, err = fn(ctx, tx, order)
		changed = advanced || order.Payment.Status != before
		return err
	})
	if err != nil {
		return err
	}
	if changed {
		r.announce(ctx, order, advanced)
	}
	return nil
}

func lockForEvent(ctx context.Context, tx repository.Tx, event *model.WebhookEvent) (*model.Order, error) {
	if event.ProviderOrderID != "" {
		return tx.Orders().LockByProviderOrderID(ctx, event.ProviderOrderID)
	}
	if event.PaymentID != "" {
		return tx.Orders().LockByProviderPaymentID(ctx, event.PaymentID)
	}
	return nil, fmt.Errorf("webhook without order reference: %w", domainErrors.ErrInvalidInput)
}

// complete records a captured payment and confirms a pending order. It is a
// no-op for an order whose payment is already settled. The returned flag
// reports whether the order status moved.
func (r *PaymentReconciler) complete(ctx context.Context, tx repository.Tx, order *model.Order, paymentID, signature string) (bool, error) {
	if order.Payment.Status == model.PaymentStatusCompleted || order.Payment.Status == model.PaymentStatusRefunded {
		return false, nil
	}

	now := r.now()
	order.Payment.Status = model.PaymentStatusCompleted
	order.Payment.ProviderPaymentID = paymentID
	if signature != "" {
		order.Payment.ProviderSignature = signature
	}
	order.Payment.PaidAt = &now
	order.UpdatedAt = now

	if order.Status == model.OrderStatusCancelled {
		return false, r.returnCapture(ctx, tx, order, paymentID)
	}

	advanced := false
	if model.CanTransition(order.Status, model.OrderStatusConfirmed) {
		order.Status = model.OrderStatusConfirmed
		advanced = true
	}
	return advanced, tx.Orders().Update(ctx, order)
}

// returnCapture credits money captured for an already cancelled order to the
// customer's wallet and marks the payment refunded.
func (r *PaymentReconciler) returnCapture(ctx context.Context, tx repository.Tx, order *model.Order, paymentID string) error {
	ref := paymentID
	if ref == "" {
		ref = order.Number
	}
	_, _, err := r.wallet.AddTransaction(ctx, tx, order.UserID, model.WalletEntry{
		Type:        model.TransactionCredit,
		Amount:      order.PriceSummary.GrandTotal,
		Description: "Payment returned for cancelled order " + order.Number,
		Reference:   "capture-refund:" + ref,
		OrderNumber: order.Number,
	})
	if err != nil {
		return fmt.Errorf("return capture: %w", err)
	}

	r.logger.WarnContext(ctx, "payment captured for cancelled order, credited to wallet",
		slog.String("order", order.Number),
		slog.String("payment_id", paymentID),
		slog.String("amount", order.PriceSummary.GrandTotal.String()),
	)
	order.Payment.Status = model.PaymentStatusRefunded
	return tx.Orders().Update(ctx, order)
}

func (r *PaymentReconciler) fail(paymentID string) settleFunc {
	return func(ctx context.Context, tx repository.Tx, order *model.Order) (bool, error) {
		if order.Payment.Status != model.PaymentStatusPending {
			return false, nil
		}
		order.Payment.Status = model.PaymentStatusFailed
		if paymentID != "" {
			order.Payment.ProviderPaymentID = paymentID
		}
		order.UpdatedAt = r.now()
		return false, tx.Orders().Update(ctx, order)
	}
}

// refund credits the refunded amount to the wallet once per provider refund id.
func (r *PaymentReconciler) refund(event *model.WebhookEvent) settleFunc {
	return func(ctx context.Context, tx repository.Tx, order *model.Order) (bool, error) {
		if event.RefundID == "" {
			return false, fmt.Errorf("refund without id: %w", domainErrors.ErrInvalidInput)
		}
		_, applied, err := r.wallet.AddTransaction(ctx, tx, order.UserID, model.WalletEntry{
			Type:        model.TransactionCredit,
			Amount:      event.Amount,
			Description: "Refund for order " + order.Number,
			Reference:   "refund:" + event.RefundID,
			OrderNumber: order.Number,
		})
		if err != nil {
			return false, err
		}
		if !applied && order.Payment.Status == model.PaymentStatusRefunded {
			return false, nil
		}
		order.Payment.Status = model.PaymentStatusRefunded
		order.UpdatedAt = r.now()
		return false, tx.Orders().Update(ctx, order)
	}
}

// AwaitingPayment lists online orders with an open provider order created before cutoff.
func (r *PaymentReconciler) AwaitingPayment(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	return r.orders.ListAwaitingPayment(ctx, cutoff, limit)
}

// Reconcile asks the provider about an awaiting order and completes it when a
// captured payment exists. It reports whether the order was settled.
func (r *PaymentReconciler) Reconcile(ctx context.Context, order model.Order) (bool, error) {
	if order.Payment.ProviderOrderID == "" {
		return false, nil
	}
	payments, err := r.provider.FetchPayments(ctx, order.Payment.ProviderOrderID)
	if err != nil {
		return false, fmt.Errorf("fetch payments: %w", err)
	}

	var captured *model.ProviderPayment
	for i := range payments {
		if payments[i].Status == model.ProviderPaymentCaptured {
			captured = &payments[i]
			break
		}
	}
	if captured == nil {
		return false, nil
	}

	err = r.settle(ctx, &model.WebhookEvent{
		Kind:            model.WebhookPaymentCaptured,
		PaymentID:       captured.ID,
		ProviderOrderID: order.Payment.ProviderOrderID,
	}, func(ctx context.Context, tx repository.Tx, locked *model.Order) (bool, error) {
		return r.complete(ctx, tx, locked, captured.ID, "")
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PaymentReconciler) announce(ctx context.Context, order *model.Order, advanced bool) {
	events := []model.Event{paymentEvent(order, order.UpdatedAt)}
	if advanced {
		events = append(events, statusEvents(order, order.UpdatedAt)...)
	}
	publishAll(ctx, r.events, r.logger, events...)
}
