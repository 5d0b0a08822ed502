package repository

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

// WalletRepository describes wallet reads.
type WalletRepository interface {
	GetByUser(ctx context.Context, userID int64) (*model.Wallet, error)
	History(ctx context.Context, userID int64, page, pageSize int) (*model.TransactionPage, error)
}
