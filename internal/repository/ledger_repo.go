// internal/repository/ledger_repo.go
package repository

import (
	"context"

	"sika-wallet/internal/domain"
)

// LedgerRepository appends double-entry records. Entries are never updated
// or deleted.
type LedgerRepository interface {
	// CreateEntry appends the ledger entry for a committed transaction using
	// the provided DBExecutor.
	CreateEntry(ctx context.Context, q DBExecutor, entry *domain.LedgerEntry) error
}
