// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"sika-wallet/internal/domain"
	"sika-wallet/internal/repository"
	"sika-wallet/internal/util"
	"sika-wallet/pkg/db"
)

// WalletService defines the wallet ledger engine: atomic credit, debit and
// transfer against the account store, reversal of committed transactions,
// the funding lifecycle, and read-only transaction queries.
type WalletService interface {
	CreateAccount(ctx context.Context, userName string) (*domain.Account, error)
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)

	Credit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, metadata domain.Metadata) (*domain.WalletTransaction, error)
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, metadata domain.Metadata) (*domain.WalletTransaction, error)
	Transfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal, description string) (*domain.WalletTransaction, error)

	Reverse(ctx context.Context, transactionID int64, reason string) error

	InitiateFunding(ctx context.Context, accountID int64, amount decimal.Decimal, paymentMethod string) (*domain.WalletTransaction, error)
	ConfirmFunding(ctx context.Context, reference string) (*domain.WalletTransaction, error)

	ListTransactions(ctx context.Context, accountID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
	GetTransaction(ctx context.Context, transactionID int64) (*domain.WalletTransaction, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	ledgerRepo      repository.LedgerRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	ledgerRepo repository.LedgerRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletService {
	return &walletService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		ledgerRepo:      ledgerRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// validateAmount rejects non-positive amounts and amounts finer than the
// minor currency unit (two decimal places).
func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return util.ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return util.ErrInvalidAmount
	}
	return nil
}

// beginMutation opens a database transaction and returns it as both a
// controller and an executor.
func (s *walletService) beginMutation(ctx context.Context) (db.TxController, repository.DBExecutor, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		s.rollbackTx(txController)
		return nil, nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}
	return txController, txExecutor, nil
}

// creditInTx applies a credit inside an already-open database transaction:
// lock, compute, persist balance, record the transaction and its ledger
// entry (debit float account, credit user account).
func (s *walletService) creditInTx(
	ctx context.Context,
	q repository.DBExecutor,
	accountID int64,
	amount decimal.Decimal,
	kind domain.TransactionKind,
	description, reference string,
	metadata domain.Metadata,
) (*domain.WalletTransaction, error) {
	balanceBefore, err := s.accountRepo.LockBalance(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	balanceAfter := balanceBefore.Add(amount)

	if err := s.accountRepo.UpdateBalance(ctx, q, accountID, balanceAfter); err != nil {
		return nil, err
	}

	transaction := domain.NewWalletTransaction(accountID, kind, amount, balanceBefore, balanceAfter, description, reference, domain.StatusSuccess, metadata)
	if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, err
	}

	entry := domain.NewLedgerEntry(transaction.ID, string(kind), domain.FloatAccount, domain.UserAccountRef(accountID), amount, description)
	if err := s.ledgerRepo.CreateEntry(ctx, q, entry); err != nil {
		return nil, err
	}

	return transaction, nil
}

// debitInTx applies a debit inside an already-open database transaction.
// It fails with ErrInsufficientBalance before writing anything, so a failed
// debit attempt leaves no trace.
func (s *walletService) debitInTx(
	ctx context.Context,
	q repository.DBExecutor,
	accountID int64,
	amount decimal.Decimal,
	kind domain.TransactionKind,
	description, reference string,
	metadata domain.Metadata,
) (*domain.WalletTransaction, error) {
	balanceBefore, err := s.accountRepo.LockBalance(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	if balanceBefore.LessThan(amount) {
		return nil, util.ErrInsufficientBalance
	}
	balanceAfter := balanceBefore.Sub(amount)

	if err := s.accountRepo.UpdateBalance(ctx, q, accountID, balanceAfter); err != nil {
		return nil, err
	}

	transaction := domain.NewWalletTransaction(accountID, kind, amount, balanceBefore, balanceAfter, description, reference, domain.StatusSuccess, metadata)
	if err := s.transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, err
	}

	entry := domain.NewLedgerEntry(transaction.ID, string(kind), domain.UserAccountRef(accountID), domain.FloatAccount, amount, description)
	if err := s.ledgerRepo.CreateEntry(ctx, q, entry); err != nil {
		return nil, err
	}

	return transaction, nil
}

// Credit adds money to an account as a single atomic unit.
func (s *walletService) Credit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, metadata domain.Metadata) (*domain.WalletTransaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	txController, txExecutor, err := s.beginMutation(ctx)
	if err != nil {
		return nil, fmt.Errorf("credit: %w", err)
	}
	defer s.rollbackTx(txController)

	transaction, err := s.creditInTx(ctx, txExecutor, accountID, amount, domain.KindCredit, description, domain.GenerateReference(domain.RefPrefixCredit), metadata)
	if err != nil {
		return nil, fmt.Errorf("credit account %d: %w", accountID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("credit: failed to commit transaction: %w", err)
	}
	return transaction, nil
}

// Debit removes money from an account as a single atomic unit, never
// allowing the balance to go negative.
func (s *walletService) Debit(ctx context.Context, accountID int64, amount decimal.Decimal, description string, metadata domain.Metadata) (*domain.WalletTransaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	txController, txExecutor, err := s.beginMutation(ctx)
	if err != nil {
		return nil, fmt.Errorf("debit: %w", err)
	}
	defer s.rollbackTx(txController)

	transaction, err := s.debitInTx(ctx, txExecutor, accountID, amount, domain.KindDebit, description, domain.GenerateReference(domain.RefPrefixDebit), metadata)
	if err != nil {
		return nil, fmt.Errorf("debit account %d: %w", accountID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("debit: failed to commit transaction: %w", err)
	}
	return transaction, nil
}

// Transfer moves money between two accounts atomically: two transaction
// rows sharing one reference and a single ledger entry (debit sender,
// credit receiver). Row locks are always taken in ascending account-id
// order so two opposing transfers between the same pair cannot deadlock.
func (s *walletService) Transfer(ctx context.Context, senderID, receiverID int64, amount decimal.Decimal, description string) (*domain.WalletTransaction, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if senderID == receiverID {
		return nil, util.ErrSameAccountTransfer
	}

	txController, txExecutor, err := s.beginMutation(ctx)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	defer s.rollbackTx(txController)

	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range lockOrder(senderID, receiverID) {
		balance, err := s.accountRepo.LockBalance(ctx, txExecutor, id)
		if err != nil {
			return nil, fmt.Errorf("transfer: failed to lock account %d: %w", id, err)
		}
		balances[id] = balance
	}

	senderBefore := balances[senderID]
	receiverBefore := balances[receiverID]
	if senderBefore.LessThan(amount) {
		return nil, util.ErrInsufficientBalance
	}
	senderAfter := senderBefore.Sub(amount)
	receiverAfter := receiverBefore.Add(amount)

	if err := s.accountRepo.UpdateBalance(ctx, txExecutor, senderID, senderAfter); err != nil {
		return nil, fmt.Errorf("transfer: failed to update sender balance: %w", err)
	}
	if err := s.accountRepo.UpdateBalance(ctx, txExecutor, receiverID, receiverAfter); err != nil {
		return nil, fmt.Errorf("transfer: failed to update receiver balance: %w", err)
	}

	reference := domain.GenerateReference(domain.RefPrefixTransfer)

	senderTxn := domain.NewWalletTransaction(senderID, domain.KindTransferOut, amount, senderBefore, senderAfter, description, reference, domain.StatusSuccess, domain.Metadata{"receiver_id": receiverID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, senderTxn); err != nil {
		return nil, fmt.Errorf("transfer: failed to create sender transaction: %w", err)
	}

	receiverTxn := domain.NewWalletTransaction(receiverID, domain.KindTransferIn, amount, receiverBefore, receiverAfter, description, reference, domain.StatusSuccess, domain.Metadata{"sender_id": senderID})
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, receiverTxn); err != nil {
		return nil, fmt.Errorf("transfer: failed to create receiver transaction: %w", err)
	}

	entry := domain.NewLedgerEntry(senderTxn.ID, "transfer", domain.UserAccountRef(senderID), domain.UserAccountRef(receiverID), amount, description)
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, entry); err != nil {
		return nil, fmt.Errorf("transfer: failed to create ledger entry: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}
	return senderTxn, nil
}

// lockOrder returns the two account ids in ascending order. All two-account
// operations must acquire row locks in this order.
func lockOrder(a, b int64) [2]int64 {
	if a > b {
		return [2]int64{b, a}
	}
	return [2]int64{a, b}
}

// CreateAccount provisions a new zero-balance account.
func (s *walletService) CreateAccount(ctx context.Context, userName string) (*domain.Account, error) {
	if userName == "" {
		return nil, util.ErrInvalidInput
	}
	account := domain.NewAccount(userName)
	if err := s.accountRepo.CreateAccount(ctx, s.dbExecutor, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

// GetBalance reads the current balance. Reads never take the account lock.
func (s *walletService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	balance, err := s.accountRepo.GetBalance(ctx, s.dbExecutor, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance for account %d: %w", accountID, err)
	}
	return balance, nil
}

// ListTransactions retrieves paginated transaction history, newest first.
func (s *walletService) ListTransactions(ctx context.Context, accountID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	if _, err := s.accountRepo.GetAccountByID(ctx, s.dbExecutor, accountID); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	transactions, totalCount, err := s.transactionRepo.ListTransactionsByAccount(ctx, s.dbExecutor, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions for account %d: %w", accountID, err)
	}
	return transactions, totalCount, nil
}

// GetTransaction retrieves a single transaction.
func (s *walletService) GetTransaction(ctx context.Context, transactionID int64) (*domain.WalletTransaction, error) {
	transaction, err := s.transactionRepo.GetTransactionByID(ctx, s.dbExecutor, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", transactionID, err)
	}
	return transaction, nil
}
