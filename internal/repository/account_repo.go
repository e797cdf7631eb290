// internal/repository/account_repo.go
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"sika-wallet/internal/domain"
)

// AccountRepository is the sole owner of account balances. Reads intended
// for mutation must go through LockBalance, which takes the row lock for the
// remainder of the enclosing database transaction.
type AccountRepository interface {
	// CreateAccount adds a new account using the provided DBExecutor.
	CreateAccount(ctx context.Context, q DBExecutor, account *domain.Account) error
	// GetAccountByID retrieves an account without locking it.
	GetAccountByID(ctx context.Context, q DBExecutor, id int64) (*domain.Account, error)
	// GetBalance reads the current balance without locking. Suitable for
	// display only; never use the result to compute a new balance.
	GetBalance(ctx context.Context, q DBExecutor, accountID int64) (decimal.Decimal, error)
	// LockBalance reads the balance under an exclusive row lock (SELECT ...
	// FOR UPDATE). Blocks until any concurrent locker of the same account
	// releases. The DBExecutor must be a transaction.
	LockBalance(ctx context.Context, q DBExecutor, accountID int64) (decimal.Decimal, error)
	// UpdateBalance writes a new balance. Must only be called while holding
	// the lock acquired by LockBalance.
	UpdateBalance(ctx context.Context, q DBExecutor, accountID int64, newBalance decimal.Decimal) error
}
