// internal/repository/postgres/transaction_pg_test.go
package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/util"
)

func TestCreateTransactionReturnsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`INSERT INTO wallet_transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	txn := domain.NewWalletTransaction(1, domain.KindCredit, decimal.RequireFromString("50.00"),
		decimal.RequireFromString("100.00"), decimal.RequireFromString("150.00"),
		"top up", "CRD-1-ABCDEF", domain.StatusSuccess, nil)

	require.NoError(t, repo.CreateTransaction(context.Background(), db, txn))
	assert.Equal(t, int64(7), txn.ID)
}

func TestCreateTransactionDuplicateReference(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`INSERT INTO wallet_transactions`).
		WillReturnError(&pq.Error{Code: "23505"})

	txn := domain.NewWalletTransaction(1, domain.KindCredit, decimal.RequireFromString("50.00"),
		decimal.RequireFromString("100.00"), decimal.RequireFromString("150.00"),
		"top up", "CRD-1-ABCDEF", domain.StatusSuccess, nil)

	err := repo.CreateTransaction(context.Background(), db, txn)
	assert.ErrorIs(t, err, util.ErrDuplicateReference)
}

func transactionRow(id int64, status domain.TransactionStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "account_id", "kind", "amount", "balance_before", "balance_after",
		"description", "reference", "status", "payment_method", "metadata", "created_at", "updated_at",
	}).AddRow(id, int64(1), "debit", "30.00", "100.00", "70.00",
		"withdrawal", "DBT-1-ABCDEF", string(status), nil, []byte(`{}`), now, now)
}

func TestGetTransactionByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM wallet_transactions WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(transactionRow(5, domain.StatusSuccess))

	txn, err := repo.GetTransactionByID(context.Background(), db, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.KindDebit, txn.Kind)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("30.00")))
}

func TestGetTransactionByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM wallet_transactions WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetTransactionByID(context.Background(), db, 404)
	assert.ErrorIs(t, err, util.ErrTransactionNotFound)
}

func TestLockTransactionByIDUsesForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM wallet_transactions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(5)).
		WillReturnRows(transactionRow(5, domain.StatusSuccess))

	txn, err := repo.LockTransactionByID(context.Background(), db, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), txn.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactionsByAccountNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	// The id tie-break keeps same-instant rows (transfer pairs) in a
	// stable page order.
	mock.ExpectQuery(`SELECT .+ FROM wallet_transactions\s+WHERE account_id = \$1\s+ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(1), 20, 0).
		WillReturnRows(transactionRow(5, domain.StatusSuccess))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wallet_transactions WHERE account_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	transactions, total, err := repo.ListTransactionsByAccount(context.Background(), db, 1, 20, 0)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
	assert.Equal(t, int64(1), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTransactionStatusMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec(`UPDATE wallet_transactions SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateTransactionStatus(context.Background(), db, 404, domain.StatusReversed)
	assert.ErrorIs(t, err, util.ErrTransactionNotFound)
}
