package ledger

import (
	"context"

	"kolo/internal/models"
)

// Entry is the handle returned by Debit and Credit, identifying the
// WalletTransaction row that was appended.
type Entry struct {
	ID               uint
	WalletID         uint
	AmountChange     int64
	ResultingBalance int64
}

// CreateTransactionParams carries everything needed to open a business
// transaction. Reference is generated when empty; Status defaults to PENDING.
type CreateTransactionParams struct {
	UserID            uint
	WalletID          uint
	Type              string
	Amount            int64
	Currency          string
	Status            string
	Reference         string
	ExternalReference string
	Narration         string
	Payload           models.JSON
}

// Ledger defines the contract implemented by ledger backends.
type Ledger interface {
	// InTransaction runs fn inside one atomic unit of work. Everything fn
	// does through the Ledger it receives commits or rolls back together.
	InTransaction(ctx context.Context, fn func(Ledger) error) error

	Debit(ctx context.Context, walletID uint, amount int64) (*Entry, error)
	Credit(ctx context.Context, walletID uint, amount int64) (*Entry, error)

	CreateTransaction(ctx context.Context, p CreateTransactionParams) (*models.Transaction, error)
	CreateFeeTransaction(ctx context.Context, parent *models.Transaction, fee int64) (*models.FeeTransaction, error)
	AttachWalletTransaction(ctx context.Context, txn *models.Transaction, entry *Entry) error

	// Transition moves the transaction and its fee leg to status in lockstep.
	Transition(ctx context.Context, txn *models.Transaction, status string) error

	// FindSettleable locates the transaction for a provider event by its
	// external reference, restricted to PENDING/PROCESSING. Terminal rows are
	// never returned, which is the idempotency guard against redelivery.
	FindSettleable(ctx context.Context, externalRef string) (*models.Transaction, error)
	// HasTransaction reports whether any transaction, in any status, carries
	// the external reference. Used to drop duplicate inward fundings.
	HasTransaction(ctx context.Context, externalRef string) (bool, error)

	FeeFor(ctx context.Context, txn *models.Transaction) (*models.FeeTransaction, error)
	WalletByID(ctx context.Context, walletID uint) (*models.Wallet, error)
	Balance(ctx context.Context, walletID uint) (int64, error)
}
