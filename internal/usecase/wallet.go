package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// WalletLedger manages wallet balances and their transaction log.
type WalletLedger struct {
	uow     repository.UnitOfWork
	wallets repository.WalletRepository
	now     func() time.Time
}

// NewWalletLedger constructs WalletLedger.
func NewWalletLedger(uow repository.UnitOfWork, wallets repository.WalletRepository) *WalletLedger {
	return &WalletLedger{uow: uow, wallets: wallets, now: time.Now}
}

// AddTransaction appends entry to the wallet of userID inside tx. A debit
// larger than the balance fails without any write. An entry whose reference
// was already recorded returns the recorded transaction and applied=false.
func (l *WalletLedger) AddTransaction(ctx context.Context, tx repository.Tx, userID int64, entry model.WalletEntry) (*model.WalletTransaction, bool, error) {
	if !entry.Amount.IsPositive() {
		return nil, false, domainErrors.ErrInvalidAmount
	}
	if entry.Type != model.TransactionCredit && entry.Type != model.TransactionDebit {
		return nil, false, domainErrors.ErrInvalidInput
	}

	wallet, err := tx.Wallets().Lock(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	if entry.Reference != "" {
		existing, err := tx.Wallets().FindByReference(ctx, wallet.ID, entry.Reference)
		switch {
		case err == nil:
			return existing, false, nil
		case !errors.Is(err, domainErrors.ErrNotFound):
			return nil, false, err
		}
	}

	var balance decimal.Decimal
	switch entry.Type {
	case model.TransactionDebit:
		if entry.Amount.GreaterThan(wallet.Balance) {
			return nil, false, domainErrors.ErrInsufficientBalance
		}
		balance = wallet.Balance.Sub(entry.Amount)
	default:
		balance = wallet.Balance.Add(entry.Amount)
	}

	record := &model.WalletTransaction{
		WalletID:     wallet.ID,
		Type:         entry.Type,
		Amount:       entry.Amount,
		BalanceAfter: balance,
		Description:  entry.Description,
		Reference:    entry.Reference,
		OrderNumber:  entry.OrderNumber,
		Metadata:     entry.Metadata,
		CreatedAt:    l.now(),
	}
	if err := tx.Wallets().Append(ctx, wallet, record); err != nil {
		return nil, false, err
	}
	wallet.Balance = balance
	return record, true, nil
}

// Credit adds funds to a wallet in its own unit of work.
func (l *WalletLedger) Credit(ctx context.Context, userID int64, entry model.WalletEntry) (*model.WalletTransaction, error) {
	entry.Type = model.TransactionCredit
	var record *model.WalletTransaction
	err := l.uow.Do(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		record, _, err = l.AddTransaction(ctx, tx, userID, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Balance returns the wallet of userID. Users without a wallet have an empty one.
func (l *WalletLedger) Balance(ctx context.Context, userID int64) (*model.Wallet, error) {
	wallet, err := l.wallets.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return &model.Wallet{UserID: userID, Balance: decimal.Zero}, nil
		}
		return nil, err
	}
	return wallet, nil
}

// TransactionHistory returns one page of transactions, newest first.
func (l *WalletLedger) TransactionHistory(ctx context.Context, userID int64, page, pageSize int) (*model.TransactionPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	return l.wallets.History(ctx, userID, page, pageSize)
}
