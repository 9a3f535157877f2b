package models

import "time"

// Account mirrors a bank account known to the accounting provider. The ID is the
// provider's account identifier and is the only stable key; name and code drift.
type Account struct {
	ID              string `gorm:"primaryKey"`
	Name            string `gorm:"index"`
	Code            string
	CurrencyCode    string
	Status          string `gorm:"index"`
	LastCollectedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
