package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/pricing"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// CartUseCase manages the active cart of a user.
type CartUseCase struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	pricing  *pricing.Engine
}

// NewCartUseCase constructs CartUseCase.
func NewCartUseCase(carts repository.CartRepository, products repository.ProductRepository, engine *pricing.Engine) *CartUseCase {
	return &CartUseCase{carts: carts, products: products, pricing: engine}
}

// View resolves cart lines with current prices. Lines whose product is gone,
// retired or short on stock are marked unavailable and left out of the preview.
func (u *CartUseCase) View(ctx context.Context, userID int64) (*model.CartView, error) {
	lines, err := u.carts.Items(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &model.CartView{Entries: make([]model.CartEntry, 0, len(lines))}
	priced := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, err := u.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if !errors.Is(err, domainErrors.ErrNotFound) {
				return nil, err
			}
			view.Entries = append(view.Entries, model.CartEntry{Item: model.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity}})
			continue
		}
		item := snapshotItem(p, line.Quantity)
		available := p.State.IsActive() && p.Stock >= line.Quantity
		view.Entries = append(view.Entries, model.CartEntry{Item: item, Available: available})
		if available {
			priced = append(priced, item)
		}
	}

	if len(priced) > 0 {
		view.Summary = u.pricing.ComputeSummary(priced, decimal.Zero, decimal.Zero)
	}
	return view, nil
}

// Put sets the quantity of a product in the cart.
func (u *CartUseCase) Put(ctx context.Context, userID int64, line model.CartLine) error {
	if line.ProductID <= 0 || line.Quantity < 1 {
		return fmt.Errorf("cart line: %w", domainErrors.ErrInvalidInput)
	}
	p, err := u.products.GetByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return fmt.Errorf("product %d: %w", line.ProductID, domainErrors.ErrProductUnavailable)
		}
		return err
	}
	if !p.State.IsActive() {
		return fmt.Errorf("product %d is %s: %w", p.ID, p.State, domainErrors.ErrProductUnavailable)
	}
	return u.carts.Put(ctx, userID, line)
}

// Remove drops a product from the cart.
func (u *CartUseCase) Remove(ctx context.Context, userID, productID int64) error {
	return u.carts.Remove(ctx, userID, productID)
}
