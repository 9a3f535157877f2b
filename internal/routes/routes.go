package routes

import (
	"github.com/gin-gonic/gin"

	handler "bank-sync-backend/internal/handlers"
	"bank-sync-backend/internal/repository"
	"bank-sync-backend/internal/scheduler"
	"bank-sync-backend/internal/services/syncer"
)

func RegisterRoutes(r *gin.Engine, svc *syncer.SyncService, sched *scheduler.Scheduler, settings *repository.SettingsRepository) {
	syncHandler := handler.NewSyncHandler(svc, sched, settings)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Sync job routes
	sync := api.Group("/sync")
	sync.POST("/run", syncHandler.RunSync)
	sync.GET("/jobs", syncHandler.ListJobs)
	sync.GET("/jobs/:id", syncHandler.GetJob)
	sync.GET("/latest", syncHandler.LatestJob)

	// Cached data routes
	accounts := api.Group("/accounts")
	{
		accounts.GET("", syncHandler.ListAccounts)
		accounts.GET("/:id/periods", syncHandler.ListAccountPeriods)
		accounts.GET("/:id/batch", syncHandler.GetAccountBatch)
	}
	api.GET("/transactions", syncHandler.ListTransactions)

	// Schedule settings
	settingsGroup := api.Group("/settings")
	settingsGroup.GET("/schedule", syncHandler.GetSchedule)
	settingsGroup.PUT("/schedule", syncHandler.UpdateSchedule)
}
