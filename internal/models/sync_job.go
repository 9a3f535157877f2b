package models

import "time"

type SyncJobStatus string

const (
	JobPending   SyncJobStatus = "pending"
	JobRunning   SyncJobStatus = "running"
	JobSucceeded SyncJobStatus = "succeeded"
	JobFailed    SyncJobStatus = "failed"
)

// SyncJob records one synchronization run for a (month, year) period.
// Transitions are pending -> running -> succeeded/failed; a terminal job is only
// revived by re-creating it under the same id, which resets every field.
type SyncJob struct {
	ID                string        `gorm:"primaryKey"`
	Month             int           `gorm:"index:idx_job_period"`
	Year              int           `gorm:"index:idx_job_period"`
	Status            SyncJobStatus `gorm:"index"`
	TotalAccounts     int
	ProcessedAccounts int
	LastAccountID     string
	LastAccountName   string
	LastError         string
	StartedAt         *time.Time `gorm:"index"`
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
