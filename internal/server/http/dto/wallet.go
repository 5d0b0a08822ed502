package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletResponse is the current wallet balance.
type WalletResponse struct {
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TransactionResponse describes a wallet ledger entry.
type TransactionResponse struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference"`
	OrderID      string          `json:"orderId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TransactionPageResponse is one page of wallet history.
type TransactionPageResponse struct {
	Items    []TransactionResponse `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

// CreditRequest is an admin wallet top-up.
type CreditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}
