package models

import "time"

// User is the owner of wallets and the recipient of notifications.
type User struct {
	ID        uint   `gorm:"primarykey"`
	Email     string `gorm:"uniqueIndex;not null"`
	Phone     string `gorm:"index"`
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
