package repository

import (
	"encoding/json"
	"errors"
	"time"

	"bank-sync-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PeriodBatchRepository struct {
	db *gorm.DB
}

func NewPeriodBatchRepository(db *gorm.DB) *PeriodBatchRepository {
	return &PeriodBatchRepository{db: db}
}

// Save stores the raw fetched transaction list for one (account, month, year),
// fully replacing any existing batch for that key. Returns the fetch timestamp.
func (r *PeriodBatchRepository) Save(accountID string, month, year int, from, to time.Time, raw interface{}) (time.Time, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return time.Time{}, err
	}
	fetchedAt := time.Now().UTC()
	batch := models.PeriodBatch{
		ID:           uuid.New(),
		AccountID:    accountID,
		Month:        month,
		Year:         year,
		FromDate:     from,
		ToDate:       to,
		FetchedAt:    fetchedAt,
		Transactions: datatypes.JSON(payload),
	}
	err = r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"from_date", "to_date", "fetched_at", "transactions",
		}),
	}).Create(&batch).Error
	return fetchedAt, err
}

func (r *PeriodBatchRepository) Get(accountID string, month, year int) (*models.PeriodBatch, error) {
	var batch models.PeriodBatch
	err := r.db.First(&batch, "account_id = ? AND month = ? AND year = ?", accountID, month, year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListPeriods returns every cached batch for an account, newest period first.
func (r *PeriodBatchRepository) ListPeriods(accountID string) ([]models.PeriodBatch, error) {
	var batches []models.PeriodBatch
	err := r.db.
		Where("account_id = ?", accountID).
		Order("year DESC, month DESC").
		Find(&batches).Error
	return batches, err
}
