package repository

import (
	"errors"

	"bank-sync-backend/internal/models"

	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get() (*models.ScheduleSettings, error) {
	var settings models.ScheduleSettings
	err := r.db.First(&settings, "id = ?", singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(settings *models.ScheduleSettings) error {
	settings.ID = singletonID
	return r.db.Save(settings).Error
}
