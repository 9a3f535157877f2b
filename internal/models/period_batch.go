package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PeriodBatch is a cached snapshot of everything fetched for one account in one
// calendar month. At most one row per (account, month, year); a new fetch for the
// same key replaces the batch entirely.
type PeriodBatch struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID    string    `gorm:"uniqueIndex:idx_account_period"`
	Month        int       `gorm:"uniqueIndex:idx_account_period"`
	Year         int       `gorm:"uniqueIndex:idx_account_period"`
	FromDate     time.Time
	ToDate       time.Time
	FetchedAt    time.Time
	Transactions datatypes.JSON
}
