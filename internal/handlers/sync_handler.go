package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/repository"
	"bank-sync-backend/internal/scheduler"
	"bank-sync-backend/internal/services/syncer"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	service   *syncer.SyncService
	scheduler *scheduler.Scheduler
	settings  *repository.SettingsRepository
}

func NewSyncHandler(service *syncer.SyncService, sched *scheduler.Scheduler, settings *repository.SettingsRepository) *SyncHandler {
	return &SyncHandler{service: service, scheduler: sched, settings: settings}
}

// RunSync triggers a background sync for one period; defaults to the current
// month when the payload omits it.
func (h *SyncHandler) RunSync(c *gin.Context) {
	var payload struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	p := syncer.Period{Month: payload.Month, Year: payload.Year}
	if p.Month == 0 && p.Year == 0 {
		now := time.Now().UTC()
		p = syncer.Period{Month: int(now.Month()), Year: now.Year()}
	}
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month/year"})
		return
	}

	job, err := h.service.StartSync(p)
	if errors.Is(err, syncer.ErrSyncInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "sync started", "job": job})
}

func (h *SyncHandler) GetJob(c *gin.Context) {
	job, err := h.service.GetJobStatus(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *SyncHandler) ListJobs(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	jobs, err := h.service.RecentJobs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *SyncHandler) LatestJob(c *gin.Context) {
	p := syncer.Period{
		Month: intQuery(c, "month", 0),
		Year:  intQuery(c, "year", 0),
	}
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month/year"})
		return
	}
	job, err := h.service.LatestJobForPeriod(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no job for period"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *SyncHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.service.CachedAccounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// ListTransactions returns cached statement lines, newest first, with a
// display amount formatted in the owning account's currency.
func (h *SyncHandler) ListTransactions(c *gin.Context) {
	accountID := c.Query("account_id")
	limit := intQuery(c, "limit", 50)

	lines, err := h.service.CachedLines(accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	currencies := map[string]string{}
	if accounts, err := h.service.CachedAccounts(); err == nil {
		for _, a := range accounts {
			currencies[a.ID] = a.CurrencyCode
		}
	}

	type lineView struct {
		models.StatementLine
		DisplayAmount string `json:"display_amount"`
	}
	views := make([]lineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, lineView{
			StatementLine: line,
			DisplayAmount: syncer.DisplayAmount(line, currencies[line.AccountID]),
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": views})
}

func (h *SyncHandler) ListAccountPeriods(c *gin.Context) {
	batches, err := h.service.CachedPeriods(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	type periodView struct {
		Month     int       `json:"month"`
		Year      int       `json:"year"`
		FetchedAt time.Time `json:"fetched_at"`
	}
	periods := make([]periodView, 0, len(batches))
	for _, b := range batches {
		periods = append(periods, periodView{Month: b.Month, Year: b.Year, FetchedAt: b.FetchedAt})
	}
	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

func (h *SyncHandler) GetAccountBatch(c *gin.Context) {
	p := syncer.Period{
		Month: intQuery(c, "month", 0),
		Year:  intQuery(c, "year", 0),
	}
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month/year"})
		return
	}
	records, err := h.service.CachedBatch(c.Param("id"), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached batch for period"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": records})
}

func (h *SyncHandler) GetSchedule(c *gin.Context) {
	settings, err := h.settings.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if settings == nil {
		settings = &models.ScheduleSettings{}
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *SyncHandler) UpdateSchedule(c *gin.Context) {
	var payload struct {
		Enabled        bool   `json:"enabled"`
		Hour           int    `json:"hour"`
		Minute         int    `json:"minute"`
		LookbackMonths int    `json:"lookback_months"`
		Timezone       string `json:"timezone"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.Hour < 0 || payload.Hour > 23 || payload.Minute < 0 || payload.Minute > 59 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time of day"})
		return
	}
	if payload.Timezone != "" {
		if _, err := time.LoadLocation(payload.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown timezone"})
			return
		}
	}

	settings := &models.ScheduleSettings{
		Enabled:        payload.Enabled,
		Hour:           payload.Hour,
		Minute:         payload.Minute,
		LookbackMonths: payload.LookbackMonths,
		Timezone:       payload.Timezone,
	}
	if err := h.settings.Save(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.scheduler.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule updated", "settings": settings})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
