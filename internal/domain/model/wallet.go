package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a wallet transaction.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Wallet is the stored-value account of a user.
type Wallet struct {
	ID        int64
	UserID    int64
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalletTransaction is an immutable ledger entry.
type WalletTransaction struct {
	ID           int64
	WalletID     int64
	Type         TransactionType
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Description  string
	Reference    string
	OrderNumber  string
	Metadata     json.RawMessage
	CreatedAt    time.Time
}

// WalletEntry is a request to append a transaction.
type WalletEntry struct {
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	Reference   string
	OrderNumber string
	Metadata    json.RawMessage
}

// TransactionPage is one page of wallet history.
type TransactionPage struct {
	Items    []WalletTransaction
	Total    int
	Page     int
	PageSize int
}
