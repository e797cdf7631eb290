// internal/domain/account.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// DefaultCurrency is the currency every account is denominated in.
const DefaultCurrency = "GHS"

// Account is the holder of a monetary balance, one per user.
// The balance is owned by the account repository and is only ever
// mutated under a row lock inside a database transaction.
type Account struct {
	ID        int64           `db:"id" json:"id"`
	UserName  string          `db:"user_name" json:"user_name"`
	Currency  string          `db:"currency" json:"currency"`
	Balance   decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(20, 2) in DB, never negative
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewAccount creates a new Account instance with a zero balance.
func NewAccount(userName string) *Account {
	now := time.Now().UTC()
	return &Account{
		UserName:  userName,
		Currency:  DefaultCurrency,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
