package syncer

import (
	"context"
	"testing"
	"time"

	"bank-sync-backend/internal/jobs"
	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/provider"
	"bank-sync-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, source TransactionSource) (*SyncService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.StatementLine{},
		&models.PeriodBatch{},
		&models.SyncJob{},
	))

	log := zap.NewNop()
	creds := &fakeCreds{}
	tracker := jobs.NewTracker(repository.NewJobRepository(db), log)
	engine := NewEngine(source, creds, log)
	svc := NewSyncService(
		engine,
		tracker,
		source,
		creds,
		repository.NewAccountRepository(db),
		repository.NewStatementLineRepository(db),
		repository.NewPeriodBatchRepository(db),
		log,
	)
	return svc, db
}

func syncSource() *fakeSource {
	return &fakeSource{
		accounts: []provider.AccountRecord{
			{ID: "acc-1", Name: "The Forest", Code: "090", Type: "BANK", Status: "ACTIVE", CurrencyCode: "GBP"},
			{ID: "acc-2", Name: "Payroll", Code: "200", Type: "BANK", Status: "ACTIVE", CurrencyCode: "GBP"},
			{ID: "acc-3", Name: "Old Savings", Code: "300", Type: "BANK", Status: "ARCHIVED", CurrencyCode: "GBP"},
		},
		pages: map[string][][]provider.Transaction{
			primaryFilter(): {
				{rec("t1", "2024-03-01", "a", 1), rec("t2", "2024-03-02", "b", 2)},
			},
		},
	}
}

func TestRunSyncHappyPath(t *testing.T) {
	svc, db := newTestService(t, syncSource())
	p := Period{Month: 3, Year: 2024}

	job, err := svc.CreateJob(p)
	require.NoError(t, err)
	require.NoError(t, svc.RunSync(context.Background(), job.ID, p))

	status, err := svc.GetJobStatus(job.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.JobSucceeded, status.Status)
	// Archived accounts are skipped before the total is recorded.
	assert.Equal(t, 2, status.TotalAccounts)
	assert.Equal(t, 2, status.ProcessedAccounts)
	assert.Equal(t, "acc-2", status.LastAccountID)

	var lineCount int64
	require.NoError(t, db.Model(&models.StatementLine{}).Count(&lineCount).Error)
	assert.Equal(t, int64(2), lineCount)

	accounts, err := svc.CachedAccounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	batch, err := svc.CachedBatch("acc-1", p)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestRunSyncIsIdempotent(t *testing.T) {
	svc, db := newTestService(t, syncSource())
	p := Period{Month: 3, Year: 2024}

	job, err := svc.CreateJob(p)
	require.NoError(t, err)
	require.NoError(t, svc.RunSync(context.Background(), job.ID, p))

	again, err := svc.CreateJob(p)
	require.NoError(t, err)
	require.NoError(t, svc.RunSync(context.Background(), again.ID, p))

	var lineCount int64
	require.NoError(t, db.Model(&models.StatementLine{}).Count(&lineCount).Error)
	assert.Equal(t, int64(2), lineCount)

	var batchCount int64
	require.NoError(t, db.Model(&models.PeriodBatch{}).Where("account_id = ?", "acc-1").Count(&batchCount).Error)
	assert.Equal(t, int64(1), batchCount)
}

func TestRunSyncFailureMarksJobFailed(t *testing.T) {
	source := syncSource()
	source.err = &provider.UpstreamError{StatusCode: 500, Body: "internal"}
	svc, _ := newTestService(t, source)
	p := Period{Month: 3, Year: 2024}

	job, err := svc.CreateJob(p)
	require.NoError(t, err)
	err = svc.RunSync(context.Background(), job.ID, p)
	require.Error(t, err)

	status, err := svc.GetJobStatus(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, status.Status)
	assert.NotEmpty(t, status.LastError)
	assert.Contains(t, status.LastError, "500")
	assert.NotNil(t, status.CompletedAt)
}

func TestRunSyncRejectsBusyPeriod(t *testing.T) {
	svc, _ := newTestService(t, syncSource())
	p := Period{Month: 3, Year: 2024}

	// Simulate an in-flight run that is still heartbeating.
	running, err := svc.CreateJob(p)
	require.NoError(t, err)
	svc.tracker.Start(running.ID, 5)

	other, err := svc.CreateJob(p)
	require.NoError(t, err)
	err = svc.RunSync(context.Background(), other.ID, p)
	assert.ErrorIs(t, err, ErrSyncInFlight)

	// A different period is unaffected.
	elsewhere, err := svc.CreateJob(Period{Month: 4, Year: 2024})
	require.NoError(t, err)
	assert.NoError(t, svc.RunSync(context.Background(), elsewhere.ID, Period{Month: 4, Year: 2024}))
}

func TestCachedBatchMalformedPayloadIsAMiss(t *testing.T) {
	svc, db := newTestService(t, syncSource())

	batch := models.PeriodBatch{
		AccountID:    "acc-1",
		Month:        3,
		Year:         2024,
		FetchedAt:    time.Now().UTC(),
		Transactions: []byte("{not json"),
	}
	require.NoError(t, db.Create(&batch).Error)

	records, err := svc.CachedBatch("acc-1", Period{Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestPeriodBounds(t *testing.T) {
	from, to := Period{Month: 2, Year: 2024}.Bounds()
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	// Leap year February.
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), to)

	_, decTo := Period{Month: 12, Year: 2023}.Bounds()
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), decTo)
}
