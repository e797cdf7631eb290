// internal/service/funding.go
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/util"
)

// InitiateFunding records a pending funding transaction before the caller
// hands off to the payment gateway. No balance changes and no ledger entry
// is written until the funding is confirmed.
func (s *walletService) InitiateFunding(ctx context.Context, accountID int64, amount decimal.Decimal, paymentMethod string) (*domain.WalletTransaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if paymentMethod == "" {
		paymentMethod = "momo"
	}

	txController, txExecutor, err := s.beginMutation(ctx)
	if err != nil {
		return nil, fmt.Errorf("initiate funding: %w", err)
	}
	defer s.rollbackTx(txController)

	balance, err := s.accountRepo.GetBalance(ctx, txExecutor, accountID)
	if err != nil {
		return nil, fmt.Errorf("initiate funding for account %d: %w", accountID, err)
	}

	// balance_before == balance_after until the gateway confirms.
	transaction := domain.NewWalletTransaction(
		accountID,
		domain.KindFunding,
		amount,
		balance,
		balance,
		"Wallet funding",
		domain.GenerateReference(domain.RefPrefixFunding),
		domain.StatusPending,
		domain.Metadata{"payment_method": paymentMethod},
	)
	transaction.PaymentMethod = &paymentMethod
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("initiate funding for account %d: %w", accountID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("initiate funding: failed to commit transaction: %w", err)
	}
	return transaction, nil
}

// ConfirmFunding is the gateway-callback path: it credits the wallet and
// flips the pending funding row to success, atomically. A reference that is
// unknown or already confirmed yields ErrTransactionNotFound, which makes
// duplicate callbacks harmless.
func (s *walletService) ConfirmFunding(ctx context.Context, reference string) (*domain.WalletTransaction, error) {
	txController, txExecutor, err := s.beginMutation(ctx)
	if err != nil {
		return nil, fmt.Errorf("confirm funding: %w", err)
	}
	defer s.rollbackTx(txController)

	pending, err := s.transactionRepo.GetPendingByReference(ctx, txExecutor, reference)
	if err != nil {
		return nil, fmt.Errorf("confirm funding %q: %w", reference, err)
	}
	if !pending.Status.CanTransitionTo(domain.StatusSuccess) {
		return nil, fmt.Errorf("confirm funding %q: %w", reference, util.ErrInvalidState)
	}

	credit, err := s.creditInTx(
		ctx,
		txExecutor,
		pending.AccountID,
		pending.Amount,
		domain.KindCredit,
		"Wallet funded via Mobile Money",
		domain.GenerateReference(domain.RefPrefixCredit),
		domain.Metadata{"payment_reference": reference},
	)
	if err != nil {
		return nil, fmt.Errorf("confirm funding %q: %w", reference, err)
	}

	if err := s.transactionRepo.UpdateTransactionStatus(ctx, txExecutor, pending.ID, domain.StatusSuccess); err != nil {
		return nil, fmt.Errorf("confirm funding %q: %w", reference, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("confirm funding: failed to commit transaction: %w", err)
	}
	return credit, nil
}
