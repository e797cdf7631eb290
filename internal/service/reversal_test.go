// internal/service/reversal_test.go
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/util"
)

func successTxn(id, accountID int64, kind domain.TransactionKind, amount string) *domain.WalletTransaction {
	txn := domain.NewWalletTransaction(accountID, kind, dec(amount), dec("100.00"), dec("70.00"), "original", "DBT-1-ABCDEF", domain.StatusSuccess, nil)
	txn.ID = id
	return txn
}

func TestReverseAlreadyReversedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	original := successTxn(10, 1, domain.KindDebit, "30.00")
	original.Status = domain.StatusReversed
	env.txnRepo.On("LockTransactionByID", mock.Anything, env.tx, int64(10)).Return(original, nil)

	// Repeated calls keep returning the same error and mutate nothing.
	for i := 0; i < 2; i++ {
		err := env.svc.Reverse(context.Background(), 10, "dup")
		assert.ErrorIs(t, err, util.ErrAlreadyReversed)
	}

	env.txnRepo.AssertNotCalled(t, "UpdateTransactionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	env.accountRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, env.tx.committed)
}

func TestReversePendingTransactionFails(t *testing.T) {
	env := newTestEnv(t)

	original := successTxn(11, 1, domain.KindFunding, "30.00")
	original.Status = domain.StatusPending
	env.txnRepo.On("LockTransactionByID", mock.Anything, env.tx, int64(11)).Return(original, nil)

	err := env.svc.Reverse(context.Background(), 11, "nope")
	assert.ErrorIs(t, err, util.ErrInvalidState)
	env.txnRepo.AssertNotCalled(t, "UpdateTransactionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReverseUnknownTransaction(t *testing.T) {
	env := newTestEnv(t)

	env.txnRepo.On("LockTransactionByID", mock.Anything, env.tx, int64(404)).Return(nil, util.ErrTransactionNotFound)

	err := env.svc.Reverse(context.Background(), 404, "missing")
	assert.ErrorIs(t, err, util.ErrTransactionNotFound)
}

func TestReverseFundingRowRejected(t *testing.T) {
	env := newTestEnv(t)

	// A confirmed funding row carries no balance effect of its own; the
	// credit it spawned is what gets reversed.
	original := successTxn(12, 1, domain.KindFunding, "30.00")
	env.txnRepo.On("LockTransactionByID", mock.Anything, env.tx, int64(12)).Return(original, nil)
	env.txnRepo.On("UpdateTransactionStatus", mock.Anything, env.tx, int64(12), domain.StatusReversed).Return(nil)

	err := env.svc.Reverse(context.Background(), 12, "nope")
	assert.ErrorIs(t, err, util.ErrInvalidState)
	assert.True(t, env.tx.rolledBack)
	assert.False(t, env.tx.committed)
	env.accountRepo.AssertNotCalled(t, "LockBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestReverseDebitCreditsBack(t *testing.T) {
	env := newTestEnv(t)

	// Debit of 30.00 took account 1 from 100.00 to 70.00.
	original := successTxn(10, 1, domain.KindDebit, "30.00")
	env.txnRepo.On("LockTransactionByID", mock.Anything, env.tx, int64(10)).Return(original, nil)
	env.txnRepo.On("UpdateTransactionStatus", mock.Anything, env.tx, int64(10), domain.StatusReversed).Return(nil)

	env.accountRepo.On("LockBalance", mock.Anything, env.tx, int64(1)).Return(dec("70.00"), nil)
	env.accountRepo.On("UpdateBalance", mock.Anything, env.tx, int64(1), decEq(dec("100.00"))).Return(nil)

	var compensating *domain.WalletTransaction
	env.txnRepo.On("CreateTransaction", mock.Anything, env.tx, mock.Anything).
		Run(func(args mock.Arguments) {
			compensating = args.Get(2).(*domain.WalletTransaction)
			compensating.ID = 12
		}).Return(nil)
	env.ledgerRepo.On("CreateEntry", mock.Anything, env.tx, mock.Anything).Return(nil)

	err := env.svc.Reverse(context.Background(), 10, "error")
	require.NoError(t, err)

	require.NotNil(t, compensating)
	assert.Equal(t, domain.KindCredit, compensating.Kind)
	assert.True(t, compensating.Amount.Equal(dec("30.00")))
	assert.Equal(t, original.ID, compensating.Metadata[domain.MetadataReversedTxnID])
	assert.Equal(t, "Reversal: error", compensating.Description)

	assert.True(t, env.tx.committed)
	env.txnRepo.AssertExpectations(t)
	env.accountRepo.AssertExpectations(t)
}

func TestReverseCreditFailsWhenFundsAlreadySpent(t *testing.T) {
	env := newTestEnv(t)

	original := successTxn(20, 2, domain.KindCredit, "50.00")
	env.txnRepo.On("LockTransactionByID", mock.Anything, env.tx, int64(20)).Return(original, nil)
	env.txnRepo.On("UpdateTransactionStatus", mock.Anything, env.tx, int64(20), domain.StatusReversed).Return(nil)

	// Only 20.00 left: the compensating debit cannot be applied.
	env.accountRepo.On("LockBalance", mock.Anything, env.tx, int64(2)).Return(dec("20.00"), nil)

	err := env.svc.Reverse(context.Background(), 20, "chargeback")
	assert.ErrorIs(t, err, util.ErrInsufficientBalance)

	// The status flip rolls back with the rest: the original stays success.
	assert.True(t, env.tx.rolledBack)
	assert.False(t, env.tx.committed)
	env.accountRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReverseTransferOutCompensatesSender(t *testing.T) {
	env := newTestEnv(t)

	original := successTxn(30, 3, domain.KindTransferOut, "30.00")
	env.txnRepo.On("LockTransactionByID", mock.Anything, env.tx, int64(30)).Return(original, nil)
	env.txnRepo.On("UpdateTransactionStatus", mock.Anything, env.tx, int64(30), domain.StatusReversed).Return(nil)

	env.accountRepo.On("LockBalance", mock.Anything, env.tx, int64(3)).Return(dec("70.00"), nil)
	env.accountRepo.On("UpdateBalance", mock.Anything, env.tx, int64(3), decEq(dec("100.00"))).Return(nil)

	var compensating *domain.WalletTransaction
	env.txnRepo.On("CreateTransaction", mock.Anything, env.tx, mock.Anything).
		Run(func(args mock.Arguments) {
			compensating = args.Get(2).(*domain.WalletTransaction)
		}).Return(nil)
	env.ledgerRepo.On("CreateEntry", mock.Anything, env.tx, mock.Anything).Return(nil)

	require.NoError(t, env.svc.Reverse(context.Background(), 30, "dispute"))
	assert.Equal(t, domain.KindCredit, compensating.Kind)
}
