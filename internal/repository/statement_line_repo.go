package repository

import (
	"time"

	"bank-sync-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatementLineRepository struct {
	db *gorm.DB
}

func NewStatementLineRepository(db *gorm.DB) *StatementLineRepository {
	return &StatementLineRepository{db: db}
}

// InsertAll bulk-inserts lines. Duplicates on the natural key are expected and
// silently absorbed, so re-running a sync never grows the table.
func (r *StatementLineRepository) InsertAll(lines []models.StatementLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lines).Error
}

func (r *StatementLineRepository) ListRecent(limit int) ([]models.StatementLine, error) {
	var lines []models.StatementLine
	err := r.db.
		Order("statement_date DESC, created_at DESC").
		Limit(limit).
		Find(&lines).Error
	return lines, err
}

func (r *StatementLineRepository) ListForAccount(accountID string, from, to time.Time) ([]models.StatementLine, error) {
	var lines []models.StatementLine
	err := r.db.
		Where("account_id = ? AND statement_date >= ? AND statement_date <= ?", accountID, from, to).
		Order("statement_date ASC").
		Find(&lines).Error
	return lines, err
}

func (r *StatementLineRepository) CountForAccount(accountID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.StatementLine{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}
