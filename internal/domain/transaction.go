// internal/domain/transaction.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionKind defines the type of a wallet transaction.
type TransactionKind string

const (
	KindCredit      TransactionKind = "credit"
	KindDebit       TransactionKind = "debit"
	KindTransferOut TransactionKind = "transfer_out"
	KindTransferIn  TransactionKind = "transfer_in"
	KindFunding     TransactionKind = "funding"
)

// Direction returns +1 for kinds that increase the balance and -1 for
// kinds that decrease it. Funding rows are pending placeholders and carry
// no balance effect of their own.
func (k TransactionKind) Direction() int {
	switch k {
	case KindCredit, KindTransferIn:
		return 1
	case KindDebit, KindTransferOut:
		return -1
	default:
		return 0
	}
}

// TransactionStatus defines the lifecycle state of a wallet transaction.
// Valid transitions are pending -> success and success -> reversed only.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusSuccess  TransactionStatus = "success"
	StatusReversed TransactionStatus = "reversed"
)

// CanTransitionTo reports whether the status machine permits moving from
// s to next.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch {
	case s == StatusPending && next == StatusSuccess:
		return true
	case s == StatusSuccess && next == StatusReversed:
		return true
	default:
		return false
	}
}

// Metadata is free-form transaction metadata stored as JSONB.
type Metadata map[string]any

// Value implements driver.Valuer so Metadata can be written as JSONB.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading JSONB columns.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = Metadata{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata source type %T", src)
	}
	return json.Unmarshal(data, m)
}

// MetadataReversedTxnID is the metadata key a compensating transaction uses
// to point back at the transaction it reverses.
const MetadataReversedTxnID = "reversed_transaction_id"

// WalletTransaction is the immutable record of one balance mutation.
// Only the status field may change after creation, and only along the
// transitions allowed by TransactionStatus.
type WalletTransaction struct {
	ID            int64             `db:"id" json:"id"`
	AccountID     int64             `db:"account_id" json:"account_id"`
	Kind          TransactionKind   `db:"kind" json:"kind"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"` // Always positive; Kind carries the sign
	BalanceBefore decimal.Decimal   `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal   `db:"balance_after" json:"balance_after"`
	Description   string            `db:"description" json:"description"`
	Reference     string            `db:"reference" json:"reference"` // Unique across the system
	Status        TransactionStatus `db:"status" json:"status"`
	PaymentMethod *string           `db:"payment_method" json:"payment_method,omitempty"`
	Metadata      Metadata          `db:"metadata" json:"metadata"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// NewWalletTransaction creates a transaction record documenting a balance
// mutation from balanceBefore to balanceAfter.
func NewWalletTransaction(
	accountID int64,
	kind TransactionKind,
	amount, balanceBefore, balanceAfter decimal.Decimal,
	description, reference string,
	status TransactionStatus,
	metadata Metadata,
) *WalletTransaction {
	now := time.Now().UTC()
	if metadata == nil {
		metadata = Metadata{}
	}
	return &WalletTransaction{
		AccountID:     accountID,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Description:   description,
		Reference:     reference,
		Status:        status,
		Metadata:      metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
