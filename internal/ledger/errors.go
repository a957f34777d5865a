package ledger

import "errors"

// Service errors
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInactiveWallet      = errors.New("wallet is inactive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrImmutableField      = errors.New("wallet transaction id is write-once")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// IsDomainInvariant reports whether err is a deterministic domain failure.
// Replaying the same job can never succeed, so the worker parks it for manual
// inspection instead of burning retries.
func IsDomainInvariant(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrImmutableField) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrInactiveWallet) ||
		errors.Is(err, ErrInvalidAmount)
}
