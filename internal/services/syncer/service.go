package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bank-sync-backend/internal/jobs"
	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/provider"
	"bank-sync-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSyncInFlight is returned when a run for the same period is already
// running. Advisory only: the check narrows the concurrent-trigger race, it
// does not close it.
var ErrSyncInFlight = errors.New("a sync for this period is already running")

// staleRunning is how long a running job may go without a progress update
// before it stops blocking new runs (a crashed run never reaches a terminal
// state on its own).
const staleRunning = 15 * time.Minute

// Period is one calendar month/year sync target.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// Bounds returns the inclusive first and last day of the period.
func (p Period) Bounds() (time.Time, time.Time) {
	from := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return from, to
}

func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000 && p.Year <= 2200
}

type SyncService struct {
	engine   *Engine
	tracker  *jobs.Tracker
	source   TransactionSource
	creds    CredentialSource
	accounts *repository.AccountRepository
	lines    *repository.StatementLineRepository
	batches  *repository.PeriodBatchRepository
	log      *zap.Logger
}

func NewSyncService(
	engine *Engine,
	tracker *jobs.Tracker,
	source TransactionSource,
	creds CredentialSource,
	accounts *repository.AccountRepository,
	lines *repository.StatementLineRepository,
	batches *repository.PeriodBatchRepository,
	log *zap.Logger,
) *SyncService {
	return &SyncService{
		engine:   engine,
		tracker:  tracker,
		source:   source,
		creds:    creds,
		accounts: accounts,
		lines:    lines,
		batches:  batches,
		log:      log,
	}
}

// CreateJob registers a fresh pending job for the period.
func (s *SyncService) CreateJob(p Period) (*models.SyncJob, error) {
	return s.tracker.Create(uuid.New().String(), p.Month, p.Year)
}

// StartSync creates a job and runs it in the background, rejecting the request
// when a run for the same period is already in flight.
func (s *SyncService) StartSync(p Period) (*models.SyncJob, error) {
	if s.periodBusy(p, "") {
		return nil, ErrSyncInFlight
	}
	job, err := s.CreateJob(p)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := s.RunSync(context.Background(), job.ID, p); err != nil {
			s.log.Error("sync run failed",
				zap.String("job_id", job.ID),
				zap.Int("month", p.Month),
				zap.Int("year", p.Year),
				zap.Error(err))
		}
	}()
	return job, nil
}

// RunSync is the orchestration entry point: it drives the job through its
// lifecycle while the engine fetches each account sequentially. Any error
// marks the job failed with a truncated message.
func (s *SyncService) RunSync(ctx context.Context, jobID string, p Period) error {
	if s.periodBusy(p, jobID) {
		return ErrSyncInFlight
	}
	if _, err := s.tracker.Create(jobID, p.Month, p.Year); err != nil {
		return err
	}
	if err := s.run(ctx, jobID, p); err != nil {
		s.tracker.Fail(jobID, err.Error())
		return err
	}
	s.tracker.Succeed(jobID)
	return nil
}

func (s *SyncService) run(ctx context.Context, jobID string, p Period) error {
	cred, err := s.creds.Valid(ctx)
	if err != nil {
		return err
	}

	records, err := s.source.ListAccounts(ctx, cred)
	if err != nil {
		return fmt.Errorf("list provider accounts: %w", err)
	}
	accounts := make([]models.Account, 0, len(records))
	for _, rec := range records {
		if rec.Status != "" && !strings.EqualFold(rec.Status, "ACTIVE") {
			continue
		}
		accounts = append(accounts, models.Account{
			ID:           rec.ID,
			Name:         rec.Name,
			Code:         rec.Code,
			CurrencyCode: rec.CurrencyCode,
			Status:       "active",
		})
	}
	if err := s.accounts.UpsertAll(accounts); err != nil {
		return fmt.Errorf("upsert accounts: %w", err)
	}

	s.tracker.Start(jobID, len(accounts))
	from, to := p.Bounds()
	for i, acct := range accounts {
		res, err := s.engine.FetchTransactions(ctx, acct, from, to)
		if err != nil {
			return fmt.Errorf("account %s: %w", acct.ID, err)
		}
		if _, err := s.batches.Save(acct.ID, p.Month, p.Year, from, to, res.Raw); err != nil {
			return fmt.Errorf("save period batch for %s: %w", acct.ID, err)
		}
		if err := s.lines.InsertAll(res.Lines); err != nil {
			return fmt.Errorf("insert statement lines for %s: %w", acct.ID, err)
		}
		if err := s.accounts.TouchCollected(acct.ID, time.Now().UTC()); err != nil {
			s.log.Warn("last-collected not persisted", zap.String("account_id", acct.ID), zap.Error(err))
		}
		s.tracker.Advance(jobID, i+1, acct.ID, acct.Name)
	}
	return nil
}

func (s *SyncService) periodBusy(p Period, excludeJobID string) bool {
	running, err := s.tracker.RunningForPeriod(p.Month, p.Year)
	if err != nil || running == nil {
		return false
	}
	return running.ID != excludeJobID &&
		time.Since(running.UpdatedAt) < staleRunning
}

func (s *SyncService) GetJobStatus(jobID string) (*models.SyncJob, error) {
	return s.tracker.GetByID(jobID)
}

func (s *SyncService) LatestJobForPeriod(p Period) (*models.SyncJob, error) {
	return s.tracker.LatestForPeriod(p.Month, p.Year)
}

func (s *SyncService) RecentJobs(limit int) ([]models.SyncJob, error) {
	return s.tracker.ListRecent(limit)
}

func (s *SyncService) CachedAccounts() ([]models.Account, error) {
	return s.accounts.GetAll()
}

func (s *SyncService) CachedLines(accountID string, limit int) ([]models.StatementLine, error) {
	if accountID == "" {
		return s.lines.ListRecent(limit)
	}
	acct, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}
	// Full cached history for one account.
	return s.lines.ListForAccount(accountID, time.Time{}, time.Now().UTC().AddDate(1, 0, 0))
}

func (s *SyncService) CachedPeriods(accountID string) ([]models.PeriodBatch, error) {
	return s.batches.ListPeriods(accountID)
}

// CachedBatch returns the raw records stored for one (account, period). A
// malformed stored payload is logged and reported as a miss, never as an error.
func (s *SyncService) CachedBatch(accountID string, p Period) ([]provider.Transaction, error) {
	batch, err := s.batches.Get(accountID, p.Month, p.Year)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, nil
	}
	var recs []provider.Transaction
	if err := json.Unmarshal(batch.Transactions, &recs); err != nil {
		s.log.Warn("cached batch payload unreadable, treating as miss",
			zap.String("account_id", accountID),
			zap.Int("month", p.Month),
			zap.Int("year", p.Year),
			zap.Error(err))
		return nil, nil
	}
	return recs, nil
}
