package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"kolo/internal/models"
)

// VirtualAccounts resolves provider bank accounts to the wallets they fund.
type VirtualAccounts struct {
	db *gorm.DB
}

// NewVirtualAccounts creates the directory.
func NewVirtualAccounts(db *gorm.DB) *VirtualAccounts {
	return &VirtualAccounts{db: db}
}

// WalletFor returns the wallet behind the given account number and currency,
// or (nil, nil) when the account is not one of ours. Unmapped accounts are an
// expected condition, not an error.
func (r *VirtualAccounts) WalletFor(ctx context.Context, accountNumber, currency string) (*models.Wallet, error) {
	if accountNumber == "" {
		return nil, nil
	}
	var va models.VirtualAccount
	err := r.db.WithContext(ctx).
		Where("account_number = ? AND currency = ?", accountNumber, currency).
		First(&va).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, va.WalletID).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}
