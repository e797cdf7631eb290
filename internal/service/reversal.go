// internal/service/reversal.go
package service

import (
	"context"
	"fmt"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/util"
)

// Reverse negates a committed transaction by synthesizing the compensating
// credit or debit. The status flip and the compensating operation run in
// one database transaction: if compensation fails (for example the funds
// were already spent elsewhere), the flip rolls back and the original stays
// in success.
func (s *walletService) Reverse(ctx context.Context, transactionID int64, reason string) error {
	txController, txExecutor, err := s.beginMutation(ctx)
	if err != nil {
		return fmt.Errorf("reverse: %w", err)
	}
	defer s.rollbackTx(txController)

	original, err := s.transactionRepo.LockTransactionByID(ctx, txExecutor, transactionID)
	if err != nil {
		return fmt.Errorf("reverse transaction %d: %w", transactionID, err)
	}

	if original.Status == domain.StatusReversed {
		return util.ErrAlreadyReversed
	}
	if !original.Status.CanTransitionTo(domain.StatusReversed) {
		return util.ErrInvalidState
	}

	if err := s.transactionRepo.UpdateTransactionStatus(ctx, txExecutor, original.ID, domain.StatusReversed); err != nil {
		return fmt.Errorf("reverse transaction %d: failed to mark reversed: %w", transactionID, err)
	}

	description := fmt.Sprintf("Reversal: %s", reason)
	metadata := domain.Metadata{domain.MetadataReversedTxnID: original.ID}

	// Compensation is the mirror image of the original's balance effect.
	// Funding rows have no effect of their own and cannot be reversed.
	switch original.Kind.Direction() {
	case -1:
		_, err = s.creditInTx(ctx, txExecutor, original.AccountID, original.Amount, domain.KindCredit, description, domain.GenerateReference(domain.RefPrefixCredit), metadata)
	case 1:
		_, err = s.debitInTx(ctx, txExecutor, original.AccountID, original.Amount, domain.KindDebit, description, domain.GenerateReference(domain.RefPrefixDebit), metadata)
	default:
		return util.ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("reverse transaction %d: compensation failed: %w", transactionID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("reverse: failed to commit transaction: %w", err)
	}
	return nil
}
