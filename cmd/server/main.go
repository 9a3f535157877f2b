package main

import (
	"log"
	"time"

	"bank-sync-backend/internal/config"
	"bank-sync-backend/internal/credentials"
	"bank-sync-backend/internal/jobs"
	"bank-sync-backend/internal/models"
	"bank-sync-backend/internal/provider"
	"bank-sync-backend/internal/repository"
	"bank-sync-backend/internal/routes"
	"bank-sync-backend/internal/scheduler"
	"bank-sync-backend/internal/services/syncer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	db := config.InitDB(cfg)

	db.AutoMigrate(
		&models.Account{},
		&models.StatementLine{},
		&models.PeriodBatch{},
		&models.SyncJob{},
		&models.ProviderCredential{},
		&models.ScheduleSettings{},
	)

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	accountRepo := repository.NewAccountRepository(db)
	lineRepo := repository.NewStatementLineRepository(db)
	batchRepo := repository.NewPeriodBatchRepository(db)
	jobRepo := repository.NewJobRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	oauthConf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
	}
	credProvider := credentials.NewProvider(credentialRepo, oauthConf, logger)
	client := provider.NewClient(cfg.ProviderBaseURL, logger)

	tracker := jobs.NewTracker(jobRepo, logger)
	engine := syncer.NewEngine(client, credProvider, logger)
	svc := syncer.NewSyncService(engine, tracker, client, credProvider, accountRepo, lineRepo, batchRepo, logger)

	sched := scheduler.New(settingsRepo, svc, logger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, svc, sched, settingsRepo)

	r.Run(":" + cfg.Port)
}
