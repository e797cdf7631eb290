// internal/domain/ledger.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FloatAccount is the pool account representing external funds entering or
// leaving the system (funding and withdrawals).
const FloatAccount = "float_account"

// UserAccountRef renders the ledger-side identifier of a user account.
func UserAccountRef(accountID int64) string {
	return fmt.Sprintf("user_%d", accountID)
}

// LedgerEntry is the double-entry counterpart of a wallet transaction:
// exactly one entry per committed transaction, pairing the debit side and
// the credit side of the fund movement. Entries are append-only.
type LedgerEntry struct {
	ID            int64           `db:"id" json:"id"`
	TransactionID int64           `db:"transaction_id" json:"transaction_id"`
	EntryType     string          `db:"entry_type" json:"entry_type"`
	DebitAccount  string          `db:"debit_account" json:"debit_account"`
	CreditAccount string          `db:"credit_account" json:"credit_account"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Description   string          `db:"description" json:"description"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// NewLedgerEntry creates the ledger record for a committed transaction.
func NewLedgerEntry(transactionID int64, entryType, debitAccount, creditAccount string, amount decimal.Decimal, description string) *LedgerEntry {
	return &LedgerEntry{
		TransactionID: transactionID,
		EntryType:     entryType,
		DebitAccount:  debitAccount,
		CreditAccount: creditAccount,
		Amount:        amount,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
}
