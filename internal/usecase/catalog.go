package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// CatalogUseCase serves product listings and catalog administration.
type CatalogUseCase struct {
	products  repository.ProductRepository
	uow       repository.UnitOfWork
	inventory *InventoryLedger
	now       func() time.Time
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository, uow repository.UnitOfWork, inventory *InventoryLedger) *CatalogUseCase {
	return &CatalogUseCase{products: products, uow: uow, inventory: inventory, now: time.Now}
}

// CreateProduct adds an active product to the catalog.
func (u *CatalogUseCase) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.Name == "" || p.Category == "" || p.Unit == "" {
		return nil, fmt.Errorf("product name, category and unit: %w", domainErrors.ErrInvalidInput)
	}
	if !p.Price.IsPositive() {
		return nil, fmt.Errorf("product price: %w", domainErrors.ErrInvalidAmount)
	}
	if p.SalePrice.Valid && (p.SalePrice.Decimal.IsNegative() || !p.SalePrice.Decimal.LessThan(p.Price)) {
		return nil, fmt.Errorf("sale price must be below price: %w", domainErrors.ErrInvalidAmount)
	}
	if p.Stock < 0 {
		return nil, fmt.Errorf("product stock: %w", domainErrors.ErrInvalidInput)
	}

	now := u.now()
	p.State = model.LifecycleActive
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := u.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Product returns an active product.
func (u *CatalogUseCase) Product(ctx context.Context, id int64) (*model.Product, error) {
	p, err := u.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.State.IsActive() {
		return nil, domainErrors.ErrNotFound
	}
	return p, nil
}

// Products lists active products matching filter.
func (u *CatalogUseCase) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		filter.Limit = defaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	filter.Query = strings.TrimSpace(filter.Query)
	return u.products.List(ctx, filter)
}

// Restock adds delivered units to a product.
func (u *CatalogUseCase) Restock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("restock quantity: %w", domainErrors.ErrInvalidInput)
	}
	err := u.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		return u.inventory.Restock(ctx, tx, id, quantity)
	})
	if err != nil {
		return nil, err
	}
	return u.products.GetByID(ctx, id)
}

// Retire hides a product from listings and checkout.
func (u *CatalogUseCase) Retire(ctx context.Context, id int64) error {
	if err := u.products.SetState(ctx, id, model.LifecycleRetired); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return domainErrors.ErrNotFound
		}
		return err
	}
	return nil
}
