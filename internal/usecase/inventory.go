package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// InventoryLedger moves product stock inside a unit of work.
type InventoryLedger struct{}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger() *InventoryLedger {
	return &InventoryLedger{}
}

// Reserve takes quantity units of a product out of stock.
func (l *InventoryLedger) Reserve(ctx context.Context, tx repository.Tx, productID int64, quantity int) (*model.Product, error) {
	if quantity < 1 {
		return nil, domainErrors.ErrInvalidInput
	}
	product, err := tx.Inventory().Lock(ctx, productID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("product %d not found: %w", productID, domainErrors.ErrProductUnavailable)
		}
		return nil, err
	}
	if !product.State.IsActive() {
		return nil, fmt.Errorf("product %d is %s: %w", productID, product.State, domainErrors.ErrProductUnavailable)
	}
	if product.Stock < quantity {
		return nil, fmt.Errorf("product %d has %d left, %d requested: %w", productID, product.Stock, quantity, domainErrors.ErrProductUnavailable)
	}

	product.Stock -= quantity
	if err := tx.Inventory().SetStock(ctx, productID, product.Stock); err != nil {
		return nil, err
	}
	return product, nil
}

// Release returns quantity units of a cancelled order to stock.
func (l *InventoryLedger) Release(ctx context.Context, tx repository.Tx, productID int64, quantity int) error {
	return l.increment(ctx, tx, productID, quantity)
}

// Restock adds delivered goods to stock.
func (l *InventoryLedger) Restock(ctx context.Context, tx repository.Tx, productID int64, quantity int) error {
	return l.increment(ctx, tx, productID, quantity)
}

func (l *InventoryLedger) increment(ctx context.Context, tx repository.Tx, productID int64, quantity int) error {
	if quantity < 1 {
		return domainErrors.ErrInvalidInput
	}
	product, err := tx.Inventory().Lock(ctx, productID)
	if err != nil {
		return err
	}
	return tx.Inventory().SetStock(ctx, productID, product.Stock+quantity)
}
