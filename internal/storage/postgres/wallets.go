package postgres

import (
	"context"

	"github.com/polkiloo/freshcart/internal/domain/model"
)

const transactionColumns = `t.id, t.wallet_id, t.type, t.amount, t.balance_after, t.description,
        COALESCE(t.reference, ''), t.order_number, t.metadata, t.created_at`

type walletRepository struct {
	db querier
}

func scanWallet(row scanner) (*model.Wallet, error) {
	var w model.Wallet
	if err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func scanTransaction(row scanner) (*model.WalletTransaction, error) {
	var t model.WalletTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.BalanceAfter, &t.Description,
		&t.Reference, &t.OrderNumber, &t.Metadata, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *walletRepository) GetByUser(ctx context.Context, userID int64) (*model.Wallet, error) {
	w, err := scanWallet(r.db.QueryRow(ctx, `SELECT id, user_id, balance, created_at, updated_at FROM wallets WHERE user_id=$1`, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return w, nil
}

// History returns one page of the ledger, newest first. Pages start at 1.
func (r *walletRepository) History(ctx context.Context, userID int64, page, pageSize int) (*model.TransactionPage, error) {
	result := &model.TransactionPage{Items: []model.WalletTransaction{}, Page: page, PageSize: pageSize}

	const countQuery = `SELECT COUNT(*) FROM wallet_transactions t JOIN wallets w ON w.id = t.wallet_id WHERE w.user_id=$1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&result.Total); err != nil {
		return nil, err
	}
	if result.Total == 0 {
		return result, nil
	}

	const query = `SELECT ` + transactionColumns + `
                   FROM wallet_transactions t JOIN wallets w ON w.id = t.wallet_id
                   WHERE w.user_id=$1
                   ORDER BY t.id DESC
                   LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, pageSize, max(page-1, 0)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
