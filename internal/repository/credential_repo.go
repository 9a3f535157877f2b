package repository

import (
	"errors"

	"bank-sync-backend/internal/models"

	"gorm.io/gorm"
)

// singletonID pins the credential and settings tables to one row each.
const singletonID = 1

type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Get() (*models.ProviderCredential, error) {
	var cred models.ProviderCredential
	err := r.db.First(&cred, "id = ?", singletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *CredentialRepository) Save(cred *models.ProviderCredential) error {
	cred.ID = singletonID
	return r.db.Save(cred).Error
}
