package repository

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// ProductRepository describes catalog reads and admin writes outside checkout.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	SetState(ctx context.Context, id int64, state model.Lifecycle) error
}

// CartRepository stores the active cart of each user.
type CartRepository interface {
	Items(ctx context.Context, userID int64) ([]model.CartLine, error)
	Put(ctx context.Context, userID int64, line model.CartLine) error
	Remove(ctx context.Context, userID, productID int64) error
}

// AddressRepository stores address book entries. Get returns a copy.
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	ListByUser(ctx context.Context, userID int64) ([]model.Address, error)
	Get(ctx context.Context, userID, id int64) (*model.Address, error)
}
