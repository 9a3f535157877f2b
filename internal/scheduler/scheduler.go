// Package scheduler fires sync runs on the admin-configured cadence.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bank-sync-backend/internal/repository"
	"bank-sync-backend/internal/services/syncer"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron     *cron.Cron
	settings *repository.SettingsRepository
	svc      *syncer.SyncService
	log      *zap.Logger

	mu       sync.Mutex
	entryID  cron.EntryID
	hasEntry bool
}

func New(settings *repository.SettingsRepository, svc *syncer.SyncService, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		settings: settings,
		svc:      svc,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if err := s.Reload(); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Reload rebuilds the cron entry from the stored settings. Called at startup
// and whenever the admin saves the schedule.
func (s *Scheduler) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasEntry {
		s.cron.Remove(s.entryID)
		s.hasEntry = false
	}

	settings, err := s.settings.Get()
	if err != nil {
		return fmt.Errorf("load schedule settings: %w", err)
	}
	if settings == nil || !settings.Enabled {
		s.log.Info("scheduled sync disabled")
		return nil
	}

	spec := fmt.Sprintf("%d %d * * *", settings.Minute, settings.Hour)
	if settings.Timezone != "" {
		spec = "CRON_TZ=" + settings.Timezone + " " + spec
	}
	id, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.entryID = id
	s.hasEntry = true
	s.log.Info("scheduled sync enabled", zap.String("spec", spec))
	return nil
}

// fire runs one sync per month in the lookback window, current month first.
func (s *Scheduler) fire() {
	settings, err := s.settings.Get()
	if err != nil || settings == nil {
		s.log.Warn("schedule fired but settings unavailable", zap.Error(err))
		return
	}
	lookback := settings.LookbackMonths
	if lookback < 1 {
		lookback = 1
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Periods run one after another; the provider rate limits are implicit in
	// sequential pagination and concurrent runs would defeat that.
	for i := 0; i < lookback; i++ {
		target := monthStart.AddDate(0, -i, 0)
		p := syncer.Period{Month: int(target.Month()), Year: target.Year()}
		job, err := s.svc.CreateJob(p)
		if err != nil {
			s.log.Error("scheduled sync could not register job",
				zap.Int("month", p.Month), zap.Int("year", p.Year), zap.Error(err))
			continue
		}
		err = s.svc.RunSync(context.Background(), job.ID, p)
		switch {
		case errors.Is(err, syncer.ErrSyncInFlight):
			s.log.Info("scheduled sync skipped, period busy",
				zap.Int("month", p.Month), zap.Int("year", p.Year))
		case err != nil:
			s.log.Error("scheduled sync failed",
				zap.String("job_id", job.ID),
				zap.Int("month", p.Month), zap.Int("year", p.Year), zap.Error(err))
		default:
			s.log.Info("scheduled sync completed",
				zap.String("job_id", job.ID),
				zap.Int("month", p.Month), zap.Int("year", p.Year))
		}
	}
}
