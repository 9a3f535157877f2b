package repository

import (
	"errors"

	"bank-sync-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Replace inserts the job row, or resets every column when a row with the same
// id already exists.
func (r *JobRepository) Replace(job *models.SyncJob) error {
	return r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(job).Error
}

func (r *JobRepository) Updates(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.SyncJob{}).
		Where("id = ?", id).
		Updates(fields).
		Error
}

func (r *JobRepository) GetByID(id string) (*models.SyncJob, error) {
	var job models.SyncJob
	err := r.db.First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) LatestForPeriod(month, year int) (*models.SyncJob, error) {
	var job models.SyncJob
	err := r.db.
		Where("month = ? AND year = ?", month, year).
		Order("created_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// RunningForPeriod returns the most recently touched running job for the
// period, if any.
func (r *JobRepository) RunningForPeriod(month, year int) (*models.SyncJob, error) {
	var job models.SyncJob
	err := r.db.
		Where("month = ? AND year = ? AND status = ?", month, year, models.JobRunning).
		Order("updated_at DESC").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) ListRecent(limit int) ([]models.SyncJob, error) {
	var jobs []models.SyncJob
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
