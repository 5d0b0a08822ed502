package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/pricing"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/polkiloo/freshcart/internal/usecase")

// OrderWorkflow places orders and drives them through their status lifecycle.
type OrderWorkflow struct {
	uow       repository.UnitOfWork
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	users     repository.UserRepository
	inventory *InventoryLedger
	wallet    *WalletLedger
	pricing   *pricing.Engine
	events    EventPublisher
	logger    *slog.Logger

	now       func() time.Time
	newNumber func(time.Time) string
}

// OrderWorkflowParams groups OrderWorkflow collaborators.
type OrderWorkflowParams struct {
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

// NewOrderWorkflow constructs OrderWorkflow.
func NewOrderWorkflow(p OrderWorkflowParams) *OrderWorkflow {
	return &OrderWorkflow{
		uow:       p.UnitOfWork,
		orders:    p.Orders,
		addresses: p.Addresses,
		users:     p.Users,
		inventory: p.Inventory,
		wallet:    p.Wallet,
		pricing:   p.Pricing,
		events:    p.Events,
		logger:    p.Logger,
		now:       time.Now,
		newNumber: NewOrderNumber,
	}
}

// CreateOrder reserves stock, applies coupon and wallet, prices the order and
// stores it together with clearing the cart in one unit of work.
func (w *OrderWorkflow) CreateOrder(ctx context.Context, userID int64, in model.CheckoutRequest) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.create", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer func() { endSpan(span, err) }()

	if !in.PaymentMethod.Valid() {
		return nil, fmt.Errorf("payment method %q: %w", in.PaymentMethod, domainErrors.ErrInvalidInput)
	}
	if in.PaymentMethod == model.PaymentMethodWallet {
		in.UseWallet = true
	}

	shipping, err := w.shippingAddress(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	now := w.now()
	err = w.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		lines := in.Items
		if len(lines) == 0 {
			cart, err := tx.Carts().Items(ctx, userID)
			if err != nil {
				return err
			}
			lines = cart
		}
		lines, err := mergeLines(lines)
		if err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			product, err := w.inventory.Reserve(ctx, tx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			items = append(items, snapshotItem(product, line.Quantity))
		}

		couponDiscount, couponID, err := w.applyCoupon(ctx, tx, in.CouponCode, items, now)
		if err != nil {
			return err
		}

		walletAvailable := decimal.Zero
		if in.UseWallet {
			wallet, err := tx.Wallets().Lock(ctx, userID)
			if err != nil {
				return err
			}
			walletAvailable = wallet.Balance
		}

		summary := w.pricing.ComputeSummary(items, couponDiscount, walletAvailable)
		order = &model.Order{
			Number:          w.newNumber(now),
			UserID:          userID,
			Items:           items,
			ShippingAddress: shipping,
			Payment:         model.Payment{Method: in.PaymentMethod, Status: model.PaymentStatusPending},
			Status:          model.OrderStatusPending,
			PriceSummary:    summary,
			CouponID:        couponID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if summary.GrandTotal.IsZero() {
			paidAt := now
			order.Payment.Status = model.PaymentStatusCompleted
			order.Payment.PaidAt = &paidAt
			order.Status = model.OrderStatusConfirmed
		}

		if err := tx.Orders().Insert(ctx, order); err != nil {
			return err
		}

		if summary.WalletUsed.IsPositive() {
			_, _, err := w.wallet.AddTransaction(ctx, tx, userID, model.WalletEntry{
				Type:        model.TransactionDebit,
				Amount:      summary.WalletUsed,
				Description: "Payment for order " + order.Number,
				Reference:   "order-debit:" + order.Number,
				OrderNumber: order.Number,
			})
			if err != nil {
				return err
			}
		}

		return tx.Carts().Clear(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "order created",
		slog.String("order", order.Number),
		slog.Int64("user_id", userID),
		slog.String("grand_total", order.PriceSummary.GrandTotal.String()),
	)
	publishAll(ctx, w.events, w.logger, orderCreatedEvents(order, now)...)
	return order, nil
}

func (w *OrderWorkflow) shippingAddress(ctx context.Context, userID int64, in model.CheckoutRequest) (model.ShippingAddress, error) {
	if in.AddressID > 0 {
		addr, err := w.addresses.Get(ctx, userID, in.AddressID)
		if err != nil {
			return model.ShippingAddress{}, err
		}
		return addr.Snapshot(), nil
	}
	if in.ShippingAddress != nil && in.ShippingAddress.Complete() {
		return *in.ShippingAddress, nil
	}
	return model.ShippingAddress{}, fmt.Errorf("shipping address: %w", domainErrors.ErrInvalidInput)
}

// applyCoupon consumes one use of the coupon when it grants a discount.
// Domain failures skip the discount; only storage errors abort checkout.
func (w *OrderWorkflow) applyCoupon(ctx context.Context, tx repository.Tx, code string, items []model.OrderItem, now time.Time) (decimal.Decimal, *int64, error) {
	code = model.NormalizeCouponCode(code)
	if code == "" {
		return decimal.Zero, nil, nil
	}

	coupon, err := tx.Coupons().LockByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			w.logger.InfoContext(ctx, "coupon skipped", slog.String("code", code), slog.String("reason", "not found"))
			return decimal.Zero, nil, nil
		}
		return decimal.Zero, nil, err
	}

	discount := pricing.CalculateDiscount(coupon, pricing.EligibleAmount(coupon, items), now)
	if !discount.IsPositive() {
		w.logger.InfoContext(ctx, "coupon skipped", slog.String("code", code), slog.String("reason", "not applicable"))
		return decimal.Zero, nil, nil
	}

	if err := tx.Coupons().SetUsedCount(ctx, coupon.ID, coupon.UsedCount+1); err != nil {
		return decimal.Zero, nil, err
	}
	id := coupon.ID
	return discount, &id, nil
}

func snapshotItem(p *model.Product, quantity int) model.OrderItem {
	item := model.OrderItem{
		ProductID: p.ID,
		Name:      p.Name,
		Unit:      p.Unit,
		Category:  p.Category,
		Price:     p.Price,
		Quantity:  quantity,
	}
	if effective := p.EffectivePrice(); effective.LessThan(p.Price) {
		item.SalePrice = effective
	}
	return item
}

// UpdateOrderStatus moves an order to status on behalf of staff.
// Delivery partners may only advance orders assigned to them.
func (w *OrderWorkflow) UpdateOrderStatus(ctx context.Context, actor model.Identity, number string, status model.OrderStatus) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.status", trace.WithAttributes(
		attribute.String("order.number", number),
		attribute.String("order.status", string(status)),
	))
	defer func() { endSpan(span, err) }()

	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, domainErrors.ErrInvalidInput)
	}

	err = w.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if !canSetStatus(actor, order, status) {
			return domainErrors.ErrUnauthorized
		}
		reason := ""
		if status == model.OrderStatusCancelled {
			reason = "cancelled by store"
		}
		return w.transition(ctx, tx, order, status, reason)
	})
	if err != nil {
		return nil, err
	}

	publishAll(ctx, w.events, w.logger, statusEvents(order, order.UpdatedAt)...)
	return order, nil
}

func canSetStatus(actor model.Identity, order *model.Order, status model.OrderStatus) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleDelivery:
		return order.AssignedTo(actor.UserID) &&
			(status == model.OrderStatusOutForDelivery || status == model.OrderStatusDelivered)
	default:
		return false
	}
}

// CancelOrder cancels an order of userID and compensates its reservations.
func (w *OrderWorkflow) CancelOrder(ctx context.Context, userID int64, number, reason string) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.cancel", trace.WithAttributes(attribute.String("order.number", number)))
	defer func() { endSpan(span, err) }()

	err = w.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if !order.OwnedBy(userID) {
			return domainErrors.ErrUnauthorized
		}
		if !model.CanTransition(order.Status, model.OrderStatusCancelled) {
			return fmt.Errorf("cannot cancel at this stage (%s): %w", order.Status, domainErrors.ErrInvalidTransition)
		}
		if reason == "" {
			reason = "cancelled by customer"
		}
		return w.transition(ctx, tx, order, model.OrderStatusCancelled, reason)
	})
	if err != nil {
		return nil, err
	}

	publishAll(ctx, w.events, w.logger, statusEvents(order, order.UpdatedAt)...)
	return order, nil
}

// transition applies a legal status change and its side effects to a locked order.
func (w *OrderWorkflow) transition(ctx context.Context, tx repository.Tx, order *model.Order, to model.OrderStatus, reason string) error {
	if !model.CanTransition(order.Status, to) {
		return fmt.Errorf("%s -> %s: %w", order.Status, to, domainErrors.ErrInvalidTransition)
	}

	now := w.now()
	switch to {
	case model.OrderStatusDelivered:
		order.Tracking.DeliveredAt = &now
		if order.Payment.Status != model.PaymentStatusCompleted {
			order.Payment.Status = model.PaymentStatusCompleted
			order.Payment.PaidAt = &now
		}
	case model.OrderStatusCancelled:
		order.CancellationReason = reason
		w.compensate(ctx, tx, order)
	}

	order.Status = to
	order.UpdatedAt = now
	return tx.Orders().Update(ctx, order)
}

// compensate returns reserved stock and refunds wallet funds of a cancelled
// order. Each step runs in its own savepoint; a failed step is logged and the
// cancellation goes ahead without it.
func (w *OrderWorkflow) compensate(ctx context.Context, tx repository.Tx, order *model.Order) {
	for _, item := range order.Items {
		err := tx.Savepoint(ctx, func(ctx context.Context) error {
			return w.inventory.Release(ctx, tx, item.ProductID, item.Quantity)
		})
		if err != nil {
			w.logger.WarnContext(ctx, "restock skipped",
				slog.String("order", order.Number),
				slog.Int64("product_id", item.ProductID),
				slog.String("error", err.Error()),
			)
		}
	}

	if !order.PriceSummary.WalletUsed.IsPositive() {
		return
	}
	err := tx.Savepoint(ctx, func(ctx context.Context) error {
		_, _, err := w.wallet.AddTransaction(ctx, tx, order.UserID, model.WalletEntry{
			Type:        model.TransactionCredit,
			Amount:      order.PriceSummary.WalletUsed,
			Description: "Refund for cancelled order " + order.Number,
			Reference:   "order-refund:" + order.Number,
			OrderNumber: order.Number,
		})
		return err
	})
	if err != nil {
		w.logger.ErrorContext(ctx, "wallet refund failed",
			slog.String("order", order.Number),
			slog.Int64("user_id", order.UserID),
			slog.String("amount", order.PriceSummary.WalletUsed.String()),
			slog.String("error", err.Error()),
		)
	}
}

// AssignDeliveryPartner hands an open order to a delivery user.
func (w *OrderWorkflow) AssignDeliveryPartner(ctx context.Context, number string, partnerID int64) (*model.Order, error) {
	partner, err := w.users.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Role != model.RoleDelivery {
		return nil, fmt.Errorf("user %d is not a delivery partner: %w", partnerID, domainErrors.ErrInvalidInput)
	}

	var order *model.Order
	err = w.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if isClosed(order.Status) {
			return fmt.Errorf("order is %s: %w", order.Status, domainErrors.ErrInvalidTransition)
		}
		order.DeliveryPartnerID = &partner.ID
		order.UpdatedAt = w.now()
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateDeliveryLocation records the courier position of an order on its way.
func (w *OrderWorkflow) UpdateDeliveryLocation(ctx context.Context, actor model.Identity, number, location string, eta *time.Time) (*model.Order, error) {
	if location == "" {
		return nil, fmt.Errorf("location: %w", domainErrors.ErrInvalidInput)
	}

	var order *model.Order
	err := w.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		order, err = tx.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !order.AssignedTo(actor.UserID) {
			return domainErrors.ErrUnauthorized
		}
		if order.Status != model.OrderStatusPreparing && order.Status != model.OrderStatusOutForDelivery {
			return fmt.Errorf("order is %s: %w", order.Status, domainErrors.ErrInvalidTransition)
		}
		order.Tracking.Location = location
		if eta != nil {
			order.Tracking.EstimatedDeliveryAt = eta
		}
		order.UpdatedAt = w.now()
		return tx.Orders().Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	publishAll(ctx, w.events, w.logger, model.Event{
		Kind:        model.EventDeliveryLocationUpdated,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		OccurredAt:  order.UpdatedAt,
		Payload:     model.DeliveryLocation{OrderID: order.Number, Location: location},
	})
	return order, nil
}

// Get returns an order visible to actor.
func (w *OrderWorkflow) Get(ctx context.Context, actor model.Identity, number string) (*model.Order, error) {
	order, err := w.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !order.VisibleTo(actor) {
		return nil, domainErrors.ErrUnauthorized
	}
	return order, nil
}

// ListByUser returns orders of userID, newest first.
func (w *OrderWorkflow) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return w.orders.ListByUser(ctx, userID)
}

// List returns orders of all users, optionally narrowed to one status.
func (w *OrderWorkflow) List(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}
	page, pageSize = normalizePage(page, pageSize)
	return w.orders.List(ctx, status, pageSize, (page-1)*pageSize)
}

func isClosed(status model.OrderStatus) bool {
	switch status {
	case model.OrderStatusDelivered, model.OrderStatusCancelled, model.OrderStatusReturned:
		return true
	}
	return false
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
