package models

import "time"

// Wallet is a per-user, per-currency balance store. Balance is held in minor
// units (kobo, cents) and must equal the sum of AmountChange over the
// wallet's WalletTransactions at every committed state.
type Wallet struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"uniqueIndex:idx_wallets_user_currency;not null"`
	Currency  string `gorm:"uniqueIndex:idx_wallets_user_currency;size:3;default:'NGN'"`
	Balance   int64  `gorm:"not null;default:0"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalletTransaction is an append-only ledger entry recording a signed balance
// delta. Rows are never updated or deleted.
type WalletTransaction struct {
	ID               uint  `gorm:"primarykey"`
	WalletID         uint  `gorm:"index;not null"`
	AmountChange     int64 `gorm:"not null"`
	ResultingBalance int64 `gorm:"not null"`
	CreatedAt        time.Time
}

// VirtualAccount maps a provider-issued bank account number to the wallet it
// funds. Inward transfers are resolved through this directory.
type VirtualAccount struct {
	ID            uint   `gorm:"primarykey"`
	UserID        uint   `gorm:"index;not null"`
	WalletID      uint   `gorm:"index;not null"`
	Provider      string `gorm:"not null"`
	BankName      string
	AccountNumber string `gorm:"uniqueIndex:idx_virtual_accounts_number_currency;not null"`
	Currency      string `gorm:"uniqueIndex:idx_virtual_accounts_number_currency;size:3;default:'NGN'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
