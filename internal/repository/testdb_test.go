package repository_test

import (
	"testing"

	"bank-sync-backend/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.StatementLine{},
		&models.PeriodBatch{},
		&models.SyncJob{},
		&models.ProviderCredential{},
		&models.ScheduleSettings{},
	))
	return db
}
