// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"sika-wallet/internal/domain"
)

// TransactionRepository defines the interface for wallet transaction records.
type TransactionRepository interface {
	// CreateTransaction appends a new transaction record using the provided
	// DBExecutor and fills in its generated ID.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.WalletTransaction) error
	// GetTransactionByID retrieves a single transaction.
	GetTransactionByID(ctx context.Context, q DBExecutor, id int64) (*domain.WalletTransaction, error)
	// LockTransactionByID retrieves a transaction under an exclusive row
	// lock. The DBExecutor must be a transaction.
	LockTransactionByID(ctx context.Context, q DBExecutor, id int64) (*domain.WalletTransaction, error)
	// GetPendingByReference retrieves a pending transaction by its reference.
	GetPendingByReference(ctx context.Context, q DBExecutor, reference string) (*domain.WalletTransaction, error)
	// UpdateTransactionStatus persists a status transition.
	UpdateTransactionStatus(ctx context.Context, q DBExecutor, id int64, status domain.TransactionStatus) error
	// ListTransactionsByAccount retrieves transaction history newest-first,
	// plus the account's total transaction count.
	ListTransactionsByAccount(ctx context.Context, q DBExecutor, accountID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
}
