package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/freshcart/internal/domain/errors"
	"github.com/polkiloo/freshcart/internal/domain/model"
	"github.com/polkiloo/freshcart/internal/domain/repository"
)

// inTx runs fn inside a mocked transaction that is expected to commit.
func inTx(t *testing.T, fn func(ctx context.Context, tx repository.Tx, mock pgxmockv3.PgxPoolIface)) {
	t.Helper()
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectBegin()
	err := storage.WithinTransaction(context.Background(), func(tx pgx.Tx) error {
		fn(context.Background(), &pgTx{tx: tx}, mock)
		mock.ExpectCommit()
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInventoryStore(t *testing.T) {
	inTx(t, func(ctx context.Context, tx repository.Tx, mock pgxmockv3.PgxPoolIface) {
		now := time.Now()
		mock.ExpectQuery("FROM products WHERE id=\\$1 FOR UPDATE").WithArgs(int64(1)).WillReturnRows(
			productRow(pgxmockv3.NewRows(productCols), 1, "apples", 5, now))
		p, err := tx.Inventory().Lock(ctx, 1)
		if err != nil || p.Stock != 5 {
			t.Fatalf("unexpected lock %+v err=%v", p, err)
		}

		mock.ExpectQuery("FROM products WHERE id=\\$1 FOR UPDATE").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
		if _, err := tx.Inventory().Lock(ctx, 2); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}

		mock.ExpectExec("UPDATE products SET stock=").WithArgs(3, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		if err := tx.Inventory().SetStock(ctx, 1, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := tx.Inventory().SetStock(ctx, 1, -1); !errors.Is(err, domainErrors.ErrProductUnavailable) {
			t.Fatalf("expected unavailable for negative stock, got %v", err)
		}

		mock.ExpectExec("UPDATE products SET stock=").WithArgs(3, int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
		if err := tx.Inventory().SetStock(ctx, 2, 3); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestCouponStore(t *testing.T) {
	inTx(t, func(ctx context.Context, tx repository.Tx, mock pgxmockv3.PgxPoolIface) {
		now := time.Now()
		mock.ExpectQuery("FROM coupons WHERE code=\\$1 FOR UPDATE").WithArgs("SAVE10").WillReturnRows(
			couponRow(pgxmockv3.NewRows(couponCols), 4, "SAVE10", 1, now))
		c, err := tx.Coupons().LockByCode(ctx, "SAVE10")
		if err != nil || c.ID != 4 || c.UsedCount != 1 {
			t.Fatalf("unexpected coupon %+v err=%v", c, err)
		}

		mock.ExpectExec("UPDATE coupons SET used_count=").WithArgs(2, int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		if err := tx.Coupons().SetUsedCount(ctx, 4, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestWalletStore(t *testing.T) {
	inTx(t, func(ctx context.Context, tx repository.Tx, mock pgxmockv3.PgxPoolIface) {
		now := time.Now()
		mock.ExpectExec("INSERT INTO wallets").WithArgs(int64(7)).WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
		mock.ExpectQuery("FROM wallets WHERE user_id=\\$1 FOR UPDATE").WithArgs(int64(7)).WillReturnRows(
			pgxmockv3.NewRows(walletCols).AddRow(int64(1), int64(7), "50", now, now))
		wallet, err := tx.Wallets().Lock(ctx, 7)
		if err != nil || wallet.ID != 1 || !wallet.Balance.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("unexpected wallet %+v err=%v", wallet, err)
		}

		mock.ExpectQuery("FROM wallet_transactions t WHERE t.wallet_id=").WithArgs(int64(1), "refund:ORD1").WillReturnError(pgx.ErrNoRows)
		if _, err := tx.Wallets().FindByReference(ctx, 1, "refund:ORD1"); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}

		mock.ExpectQuery("FROM wallet_transactions t WHERE t.wallet_id=").WithArgs(int64(1), "promo-1").WillReturnRows(
			pgxmockv3.NewRows(transactionCols).AddRow(int64(5), int64(1), model.TransactionCredit, "50", "50", "", "promo-1", "", nil, now))
		if found, err := tx.Wallets().FindByReference(ctx, 1, "promo-1"); err != nil || found.ID != 5 {
			t.Fatalf("unexpected transaction %+v err=%v", found, err)
		}

		entry := &model.WalletTransaction{
			Type:         model.TransactionDebit,
			Amount:       decimal.NewFromInt(20),
			BalanceAfter: decimal.NewFromInt(30),
			OrderNumber:  "ORD1",
			CreatedAt:    now,
		}
		mock.ExpectQuery("INSERT INTO wallet_transactions").
			WithArgs(int64(1), model.TransactionDebit, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), "", "", "ORD1", pgxmockv3.AnyArg(), now).
			WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(6)))
		mock.ExpectExec("UPDATE wallets SET balance=").WithArgs(pgxmockv3.AnyArg(), now, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		if err := tx.Wallets().Append(ctx, wallet, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entry.ID != 6 || entry.WalletID != 1 || !wallet.Balance.Equal(decimal.NewFromInt(30)) {
			t.Fatalf("unexpected append result %+v wallet %+v", entry, wallet)
		}

		overdraft := &model.WalletTransaction{Type: model.TransactionDebit, Amount: decimal.NewFromInt(99), BalanceAfter: decimal.NewFromInt(-69)}
		if err := tx.Wallets().Append(ctx, wallet, overdraft); !errors.Is(err, domainErrors.ErrInsufficientBalance) {
			t.Fatalf("expected insufficient balance, got %v", err)
		}

		dup := &model.WalletTransaction{Type: model.TransactionCredit, Amount: decimal.NewFromInt(1), BalanceAfter: decimal.NewFromInt(31), Reference: "promo-1", CreatedAt: now}
		mock.ExpectQuery("INSERT INTO wallet_transactions").WillReturnError(&pgconn.PgError{Code: "23505"})
		if err := tx.Wallets().Append(ctx, wallet, dup); !errors.Is(err, domainErrors.ErrAlreadyExists) {
			t.Fatalf("expected already exists for reused reference, got %v", err)
		}
	})
}

func TestOrderStore(t *testing.T) {
	inTx(t, func(ctx context.Context, tx repository.Tx, mock pgxmockv3.PgxPoolIface) {
		now := time.Now()
		order := &model.Order{
			Number:  "ORD1",
			UserID:  7,
			Items:   []model.OrderItem{{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(100)}},
			Payment: model.Payment{Method: model.PaymentMethodUPI, Status: model.PaymentStatusPending},
			Status:  model.OrderStatusPending,
		}
		mock.ExpectQuery("INSERT INTO orders").WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(11)))
		if err := tx.Orders().Insert(ctx, order); err != nil || order.ID != 11 {
			t.Fatalf("unexpected insert %+v err=%v", order, err)
		}

		mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
		if err := tx.Orders().Insert(ctx, order); !errors.Is(err, domainErrors.ErrAlreadyExists) {
			t.Fatalf("expected already exists, got %v", err)
		}

		mock.ExpectQuery("FROM orders WHERE number=\\$1 FOR UPDATE").WithArgs("ORD1").WillReturnRows(
			orderRow(pgxmockv3.NewRows(orderCols), 11, "ORD1", model.OrderStatusPending, now))
		locked, err := tx.Orders().LockByNumber(ctx, "ORD1")
		if err != nil || locked.ID != 11 {
			t.Fatalf("unexpected lock %+v err=%v", locked, err)
		}

		mock.ExpectQuery("FROM orders WHERE provider_order_id=").WithArgs("order_1").WillReturnRows(
			orderRow(pgxmockv3.NewRows(orderCols), 11, "ORD1", model.OrderStatusPending, now))
		if _, err := tx.Orders().LockByProviderOrderID(ctx, "order_1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mock.ExpectQuery("FROM orders WHERE provider_payment_id=").WithArgs("pay_1").WillReturnError(pgx.ErrNoRows)
		if _, err := tx.Orders().LockByProviderPaymentID(ctx, "pay_1"); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}

		locked.Status = model.OrderStatusConfirmed
		locked.Payment.Status = model.PaymentStatusCompleted
		locked.Payment.ProviderPaymentID = "pay_1"
		locked.UpdatedAt = now
		mock.ExpectExec("UPDATE orders SET").
			WithArgs("ORD1", model.PaymentStatusCompleted, "order_1", "pay_1", "", pgxmockv3.AnyArg(),
				model.OrderStatusConfirmed, pgxmockv3.AnyArg(), "", pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
				pgxmockv3.AnyArg(), "", false, now).
			WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		if err := tx.Orders().Update(ctx, locked); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mock.ExpectExec("UPDATE orders SET").WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
		if err := tx.Orders().Update(ctx, &model.Order{Number: "GONE"}); !errors.Is(err, domainErrors.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestCartStore(t *testing.T) {
	inTx(t, func(ctx context.Context, tx repository.Tx, mock pgxmockv3.PgxPoolIface) {
		mock.ExpectQuery("FROM cart_items WHERE user_id=\\$1 ORDER BY product_id FOR UPDATE").WithArgs(int64(7)).WillReturnRows(
			pgxmockv3.NewRows([]string{"product_id", "quantity"}).AddRow(int64(1), 2))
		lines, err := tx.Carts().Items(ctx, 7)
		if err != nil || len(lines) != 1 || lines[0].Quantity != 2 {
			t.Fatalf("unexpected lines %+v err=%v", lines, err)
		}

		mock.ExpectExec("DELETE FROM cart_items WHERE user_id=").WithArgs(int64(7)).WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
		if err := tx.Carts().Clear(ctx, 7); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestSavepoint(t *testing.T) {
	inTx(t, func(ctx context.Context, tx repository.Tx, mock pgxmockv3.PgxPoolIface) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products SET stock=").WithArgs(6, int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
		mock.ExpectCommit()
		err := tx.Savepoint(ctx, func(ctx context.Context) error {
			return tx.Inventory().SetStock(ctx, 1, 6)
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products SET stock=").WithArgs(6, int64(2)).WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()
		err = tx.Savepoint(ctx, func(ctx context.Context) error {
			return tx.Inventory().SetStock(ctx, 2, 6)
		})
		if err == nil {
			t.Fatal("expected error from failed savepoint")
		}

		mock.ExpectBegin().WillReturnError(errors.New("conn busy"))
		called := false
		err = tx.Savepoint(ctx, func(context.Context) error {
			called = true
			return nil
		})
		if err == nil || called {
			t.Fatalf("expected savepoint error before fn runs, got err=%v called=%v", err, called)
		}
	})
}
