// Package jobs tracks the lifecycle of one synchronization run as a durable
// state machine: pending -> running -> succeeded/failed.
package jobs

import (
	"fmt"
	"time"

	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/repository"

	"go.uber.org/zap"
)

// maxErrorLen bounds the error message stored on a failed job.
const maxErrorLen = 500

type Tracker struct {
	repo *repository.JobRepository
	log  *zap.Logger
}

func NewTracker(repo *repository.JobRepository, log *zap.Logger) *Tracker {
	return &Tracker{repo: repo, log: log}
}

// Create registers the run as pending, resetting any existing row with the same
// id back to initial values. Unlike the other mutators this propagates
// persistence errors: a run that cannot be registered must not proceed.
func (t *Tracker) Create(jobID string, month, year int) (*models.SyncJob, error) {
	job := &models.SyncJob{
		ID:        jobID,
		Month:     month,
		Year:      year,
		Status:    models.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.repo.Replace(job); err != nil {
		return nil, fmt.Errorf("register sync job %s: %w", jobID, err)
	}
	return job, nil
}

// Start transitions the job to running and records the account total. Calling
// it again restates the running state but wipes progress, so callers must not
// call it mid-run.
func (t *Tracker) Start(jobID string, totalAccounts int) {
	now := time.Now().UTC()
	err := t.repo.Updates(jobID, map[string]interface{}{
		"status":             models.JobRunning,
		"total_accounts":     totalAccounts,
		"processed_accounts": 0,
		"last_account_id":    "",
		"last_account_name":  "",
		"last_error":         "",
		"started_at":         now,
		"completed_at":       nil,
	})
	if err != nil {
		t.log.Warn("job start not persisted", zap.String("job_id", jobID), zap.Error(err))
	}
}

// Advance updates the progress counters. Best-effort: persistence failures are
// logged and swallowed, progress reporting is not part of run correctness.
func (t *Tracker) Advance(jobID string, processed int, accountID, accountName string) {
	err := t.repo.Updates(jobID, map[string]interface{}{
		"processed_accounts": processed,
		"last_account_id":    accountID,
		"last_account_name":  accountName,
	})
	if err != nil {
		t.log.Warn("job progress not persisted", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (t *Tracker) Succeed(jobID string) {
	err := t.repo.Updates(jobID, map[string]interface{}{
		"status":       models.JobSucceeded,
		"completed_at": time.Now().UTC(),
	})
	if err != nil {
		t.log.Warn("job completion not persisted", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (t *Tracker) Fail(jobID string, message string) {
	err := t.repo.Updates(jobID, map[string]interface{}{
		"status":       models.JobFailed,
		"last_error":   truncate(message, maxErrorLen),
		"completed_at": time.Now().UTC(),
	})
	if err != nil {
		t.log.Warn("job failure not persisted", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (t *Tracker) GetByID(jobID string) (*models.SyncJob, error) {
	return t.repo.GetByID(jobID)
}

func (t *Tracker) LatestForPeriod(month, year int) (*models.SyncJob, error) {
	return t.repo.LatestForPeriod(month, year)
}

func (t *Tracker) RunningForPeriod(month, year int) (*models.SyncJob, error) {
	return t.repo.RunningForPeriod(month, year)
}

func (t *Tracker) ListRecent(limit int) ([]models.SyncJob, error) {
	return t.repo.ListRecent(limit)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
