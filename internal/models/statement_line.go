package models

import (
	"time"

	"github.com/google/uuid"
)

// StatementLine is a normalized statement entry. The provider gives no transaction
// id that survives re-fetches, so the composite index over (account, date,
// description, reference, spent, received, balance) is the dedup key. Rows are
// insert-only; re-inserting an identical tuple is a no-op.
type StatementLine struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID     string    `gorm:"index;uniqueIndex:idx_statement_natural"`
	StatementDate time.Time `gorm:"uniqueIndex:idx_statement_natural"`
	Description   string    `gorm:"uniqueIndex:idx_statement_natural"`
	Reference     string    `gorm:"uniqueIndex:idx_statement_natural"`
	PaymentRef    string
	Spent         string `gorm:"uniqueIndex:idx_statement_natural"`
	Received      string `gorm:"uniqueIndex:idx_statement_natural"`
	Balance       string `gorm:"uniqueIndex:idx_statement_natural"`
	Source        string
	Status        string `gorm:"index"`
	CreatedAt     time.Time
}
