// internal/repository/postgres/ledger_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/repository"
)

// LedgerRepository implements repository.LedgerRepository for PostgreSQL.
type LedgerRepository struct{}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) repository.LedgerRepository {
	return &LedgerRepository{}
}

// CreateEntry appends a double-entry record using the provided DBExecutor.
func (r *LedgerRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (transaction_id, entry_type, debit_account, credit_account, amount, description, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		entry.TransactionID,
		entry.EntryType,
		entry.DebitAccount,
		entry.CreditAccount,
		entry.Amount,
		entry.Description,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", mapError(err))
	}
	return nil
}
