package repository

import (
	"context"
	"time"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// OrderRepository describes order reads outside of a unit of work.
type OrderRepository interface {
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	List(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.Order, error)
	ListAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]model.Order, error)
}
