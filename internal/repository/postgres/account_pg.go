// internal/repository/postgres/account_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/repository"
	"sika-wallet/internal/util"
)

// AccountRepository implements repository.AccountRepository for PostgreSQL.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{}
}

// CreateAccount inserts a new account using the provided DBExecutor.
func (r *AccountRepository) CreateAccount(ctx context.Context, q repository.DBExecutor, account *domain.Account) error {
	query := `INSERT INTO accounts (user_name, currency, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query, account.UserName, account.Currency, account.Balance, account.CreatedAt, account.UpdatedAt).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", mapError(err))
	}
	return nil
}

// GetAccountByID retrieves an account by its ID without locking it.
func (r *AccountRepository) GetAccountByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Account, error) {
	var account domain.Account
	query := `SELECT id, user_name, currency, balance, created_at, updated_at FROM accounts WHERE id = $1`
	err := q.GetContext(ctx, &account, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %d: %w", id, mapError(err))
	}
	return &account, nil
}

// GetBalance reads the current balance without locking.
func (r *AccountRepository) GetBalance(ctx context.Context, q repository.DBExecutor, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT balance FROM accounts WHERE id = $1`
	err := q.GetContext(ctx, &balance, query, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, util.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get balance for account %d: %w", accountID, mapError(err))
	}
	return balance, nil
}

// LockBalance reads the balance under an exclusive row lock. The lock is
// held until the surrounding transaction commits or rolls back.
func (r *AccountRepository) LockBalance(ctx context.Context, q repository.DBExecutor, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &balance, query, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, util.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to lock account %d: %w", accountID, mapError(err))
	}
	return balance, nil
}

// UpdateBalance writes a new balance. Callers must hold the row lock
// acquired by LockBalance.
func (r *AccountRepository) UpdateBalance(ctx context.Context, q repository.DBExecutor, accountID int64, newBalance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, newBalance, time.Now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %d: %w", accountID, mapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for account %d: %w", accountID, err)
	}
	if rowsAffected == 0 {
		return util.ErrAccountNotFound
	}
	return nil
}
