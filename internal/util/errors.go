// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
//
// Business-rule errors (invalid amount, insufficient balance, already
// reversed, invalid state) are terminal for the operation and must never be
// retried. ErrLockTimeout and ErrStoreUnavailable indicate infrastructure
// failures where no partial commit occurred, so callers may retry.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadyReversed     = errors.New("transaction already reversed")
	ErrInvalidState        = errors.New("transaction is not in a reversible state")
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrLockTimeout         = errors.New("timed out waiting for account lock")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrUnauthorized        = errors.New("unauthorized")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// IsRetryable reports whether the failure is an infrastructure error that is
// safe to retry from the caller's side.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrStoreUnavailable)
}
