package models

import "time"

// Transaction types
const (
	TransactionTypeSendMoney    = "SEND_MONEY"
	TransactionTypeFundWallet   = "FUND_WALLET"
	TransactionTypeAirtime      = "AIRTIME"
	TransactionTypeData         = "DATA"
	TransactionTypeCableTV      = "CABLETV"
	TransactionTypeUtility      = "UTILITY"
	TransactionTypeSubscription = "SUBSCRIPTION"
	TransactionTypeSync         = "TRANSACTION_SYNC"
)

// Transaction statuses. SUCCESSFUL and REVERSED are terminal.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusSuccessful = "SUCCESSFUL"
	StatusReversed   = "REVERSED"
	StatusFailed     = "FAILED"
)

// Transaction is a business-level monetary operation, distinct from the
// WalletTransaction ledger entries that fund it. Amount is in minor units.
// Reference is the internal idempotency key; ExternalReference correlates the
// row with provider webhooks.
type Transaction struct {
	ID                  uint   `gorm:"primarykey"`
	UserID              uint   `gorm:"index;not null"`
	WalletID            uint   `gorm:"index;not null"`
	Type                string `gorm:"not null"`
	Amount              int64  `gorm:"not null"`
	Currency            string `gorm:"size:3;default:'NGN'"`
	Status              string `gorm:"not null;default:'PENDING'"`
	Reference           string `gorm:"uniqueIndex;not null"`
	ExternalReference   string `gorm:"index"`
	WalletTransactionID *uint  // write-once, set by AttachWalletTransaction
	Narration           string
	Payload             JSON `gorm:"type:jsonb"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FeeTransaction is the fee leg of a Transaction. One is created for every
// Transaction, even at zero fee, and its status tracks the parent in lockstep.
type FeeTransaction struct {
	ID                  uint   `gorm:"primarykey"`
	TransactionID       uint   `gorm:"uniqueIndex;not null"`
	UserID              uint   `gorm:"index;not null"`
	WalletID            uint   `gorm:"index;not null"`
	Amount              int64  `gorm:"not null"`
	Currency            string `gorm:"size:3;default:'NGN'"`
	Status              string `gorm:"not null;default:'PENDING'"`
	Reference           string `gorm:"uniqueIndex;not null"`
	WalletTransactionID *uint
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
