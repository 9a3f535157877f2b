package repository

import (
	"errors"
	"strings"
	"time"

	"bank-sync-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Expose DB if needed
func (r *AccountRepository) DB() *gorm.DB {
	return r.db
}

// UpsertAll bulk-upserts accounts by provider id, last write wins on metadata.
func (r *AccountRepository) UpsertAll(accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "code", "currency_code", "status", "updated_at",
		}),
	}).Create(&accounts).Error
}

func (r *AccountRepository) GetAll() ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Order("name ASC").Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) GetByID(id string) (*models.Account, error) {
	var account models.Account
	err := r.db.First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SearchByName performs a simple LIKE lookup used by the admin UI.
func (r *AccountRepository) SearchByName(query string) ([]models.Account, error) {
	var accounts []models.Account
	likeName := "%" + strings.ToLower(query) + "%"
	err := r.db.Where("LOWER(name) LIKE ?", likeName).Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) TouchCollected(id string, t time.Time) error {
	return r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_collected_at", t).
		Error
}
