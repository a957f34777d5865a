package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kolo/internal/models"
)

type gormLedger struct {
	db *gorm.DB
}

// New creates the postgres-backed ledger.
func New(db *gorm.DB) Ledger {
	if db == nil {
		panic("db is required")
	}
	return &gormLedger{db: db}
}

func (l *gormLedger) InTransaction(ctx context.Context, fn func(Ledger) error) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedger{db: tx})
	})
}

func (l *gormLedger) Debit(ctx context.Context, walletID uint, amount int64) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, walletID, -amount)
}

func (l *gormLedger) Credit(ctx context.Context, walletID uint, amount int64) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return l.apply(ctx, walletID, amount)
}

// apply serializes balance mutation per wallet: the wallet row is locked FOR
// UPDATE for the duration, so the balance update and the entry append cannot
// interleave with another writer on the same wallet.
func (l *gormLedger) apply(ctx context.Context, walletID uint, delta int64) (*Entry, error) {
	var entry Entry
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet models.Wallet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, walletID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return fmt.Errorf("lock wallet: %w", err)
		}

		if delta < 0 {
			if !wallet.Active {
				return ErrInactiveWallet
			}
			if wallet.Balance+delta < 0 {
				return ErrInsufficientFunds
			}
		}

		wallet.Balance += delta
		if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
			Update("balance", wallet.Balance).Error; err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		wt := models.WalletTransaction{
			WalletID:         wallet.ID,
			AmountChange:     delta,
			ResultingBalance: wallet.Balance,
		}
		if err := tx.Create(&wt).Error; err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}

		entry = Entry{
			ID:               wt.ID,
			WalletID:         wallet.ID,
			AmountChange:     delta,
			ResultingBalance: wallet.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (l *gormLedger) CreateTransaction(ctx context.Context, p CreateTransactionParams) (*models.Transaction, error) {
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if p.Reference == "" {
		p.Reference = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	if p.Currency == "" {
		p.Currency = "NGN"
	}

	txn := &models.Transaction{
		UserID:            p.UserID,
		WalletID:          p.WalletID,
		Type:              p.Type,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            p.Status,
		Reference:         p.Reference,
		ExternalReference: p.ExternalReference,
		Narration:         p.Narration,
		Payload:           p.Payload,
	}
	if err := l.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil
}

func (l *gormLedger) CreateFeeTransaction(ctx context.Context, parent *models.Transaction, fee int64) (*models.FeeTransaction, error) {
	if fee < 0 {
		return nil, ErrInvalidAmount
	}
	ft := &models.FeeTransaction{
		TransactionID: parent.ID,
		UserID:        parent.UserID,
		WalletID:      parent.WalletID,
		Amount:        fee,
		Currency:      parent.Currency,
		Status:        parent.Status,
		Reference:     parent.Reference + "-fee",
	}
	if err := l.db.WithContext(ctx).Create(ft).Error; err != nil {
		return nil, fmt.Errorf("create fee transaction: %w", err)
	}
	return ft, nil
}

func (l *gormLedger) AttachWalletTransaction(ctx context.Context, txn *models.Transaction, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("nil ledger entry")
	}
	if txn.WalletTransactionID != nil {
		if *txn.WalletTransactionID == entry.ID {
			return nil
		}
		return ErrImmutableField
	}

	// The WHERE guard enforces write-once at the database even if two workers
	// hold stale copies of the same row.
	res := l.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND wallet_transaction_id IS NULL", txn.ID).
		Update("wallet_transaction_id", entry.ID)
	if res.Error != nil {
		return fmt.Errorf("attach wallet transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.Transaction
		if err := l.db.WithContext(ctx).Select("wallet_transaction_id").
			First(&current, txn.ID).Error; err != nil {
			return fmt.Errorf("re-read transaction: %w", err)
		}
		if current.WalletTransactionID != nil && *current.WalletTransactionID == entry.ID {
			txn.WalletTransactionID = current.WalletTransactionID
			return nil
		}
		return ErrImmutableField
	}

	id := entry.ID
	txn.WalletTransactionID = &id
	return nil
}

func (l *gormLedger) Transition(ctx context.Context, txn *models.Transaction, status string) error {
	if txn.Status == status {
		return nil
	}
	if !CanTransition(txn.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, txn.Status, status)
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Optimistic guard on the status we read: a concurrent settle of the
		// same transaction loses here instead of double-applying.
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, txn.Status).
			Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("update transaction status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: transaction %d moved concurrently", ErrInvalidTransition, txn.ID)
		}
		if err := tx.Model(&models.FeeTransaction{}).
			Where("transaction_id = ?", txn.ID).
			Update("status", status).Error; err != nil {
			return fmt.Errorf("update fee status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	txn.Status = status
	return nil
}

func (l *gormLedger) FindSettleable(ctx context.Context, externalRef string) (*models.Transaction, error) {
	var txn models.Transaction
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_reference = ? AND status IN ?", externalRef,
			[]string{models.StatusPending, models.StatusProcessing}).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find settleable transaction: %w", err)
	}
	return &txn, nil
}

func (l *gormLedger) HasTransaction(ctx context.Context, externalRef string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("external_reference = ?", externalRef).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count transactions: %w", err)
	}
	return count > 0, nil
}

func (l *gormLedger) FeeFor(ctx context.Context, txn *models.Transaction) (*models.FeeTransaction, error) {
	var ft models.FeeTransaction
	err := l.db.WithContext(ctx).
		Where("transaction_id = ?", txn.ID).
		First(&ft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("get fee transaction: %w", err)
	}
	return &ft, nil
}

func (l *gormLedger) WalletByID(ctx context.Context, walletID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := l.db.WithContext(ctx).First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &wallet, nil
}

func (l *gormLedger) Balance(ctx context.Context, walletID uint) (int64, error) {
	wallet, err := l.WalletByID(ctx, walletID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}
