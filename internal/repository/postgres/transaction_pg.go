// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/repository"
	"sika-wallet/internal/util"
)

const transactionColumns = `id, account_id, kind, amount, balance_before, balance_after, description, reference, status, payment_method, metadata, created_at, updated_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions
              (account_id, kind, amount, balance_before, balance_after, description, reference, status, payment_method, metadata, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.AccountID,
		transaction.Kind,
		transaction.Amount,
		transaction.BalanceBefore,
		transaction.BalanceAfter,
		transaction.Description,
		transaction.Reference,
		transaction.Status,
		transaction.PaymentMethod,
		transaction.Metadata,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", mapError(err))
	}
	return nil
}

// GetTransactionByID retrieves a single transaction.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.WalletTransaction, error) {
	var transaction domain.WalletTransaction
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE id = $1`
	err := q.GetContext(ctx, &transaction, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, mapError(err))
	}
	return &transaction, nil
}

// LockTransactionByID retrieves a transaction under an exclusive row lock.
func (r *TransactionRepository) LockTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.WalletTransaction, error) {
	var transaction domain.WalletTransaction
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &transaction, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to lock transaction %d: %w", id, mapError(err))
	}
	return &transaction, nil
}

// GetPendingByReference retrieves a pending transaction by its reference,
// locking it so a concurrent confirmation of the same reference blocks.
func (r *TransactionRepository) GetPendingByReference(ctx context.Context, q repository.DBExecutor, reference string) (*domain.WalletTransaction, error) {
	var transaction domain.WalletTransaction
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE reference = $1 AND status = $2 FOR UPDATE`
	err := q.GetContext(ctx, &transaction, query, reference, domain.StatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get pending transaction %q: %w", reference, mapError(err))
	}
	return &transaction, nil
}

// UpdateTransactionStatus persists a status transition.
func (r *TransactionRepository) UpdateTransactionStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.TransactionStatus) error {
	query := `UPDATE wallet_transactions SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %d: %w", id, mapError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for transaction %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrTransactionNotFound
	}
	return nil
}

// ListTransactionsByAccount retrieves a paginated list of transactions for
// an account, newest first. It performs two queries: one for the page and
// one for the total count.
func (r *TransactionRepository) ListTransactionsByAccount(ctx context.Context, q repository.DBExecutor, accountID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	transactions := []domain.WalletTransaction{}

	query := `SELECT ` + transactionColumns + `
              FROM wallet_transactions
              WHERE account_id = $1
              ORDER BY created_at DESC, id DESC
              LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for account %d: %w", accountID, mapError(err))
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM wallet_transactions WHERE account_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for account %d: %w", accountID, mapError(err))
	}

	return transactions, totalCount, nil
}
