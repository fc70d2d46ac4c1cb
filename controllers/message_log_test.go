package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"renovapro-backend/config"
	"renovapro-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupControllerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Renewal{},
		&models.MessageTemplate{},
		&models.MessageLog{},
		&models.Setting{},
	))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	gin.SetMode(gin.TestMode)
	return db
}

func TestResubmitMessageLogClearsErrorDetail(t *testing.T) {
	db := setupControllerDB(t)

	customer := models.Customer{
		Name:           "Ana",
		Phone:          "5511987654321",
		ProductType:    models.ProductIPTV,
		PlanName:       "P",
		ExpirationDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
		SendTime:       "09:00",
		IsActive:       true,
	}
	require.NoError(t, db.Create(&customer).Error)

	entry := models.MessageLog{
		CustomerID:  customer.ID,
		Phone:       customer.Phone,
		Body:        "olá",
		Status:      models.LogStatusFailed,
		Kind:        models.NoticeKindDueToday,
		ErrorDetail: "HTTP 500: sidecar down",
		Attempts:    1,
	}
	require.NoError(t, db.Create(&entry).Error)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: entry.ID.String()}}
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	ResubmitMessageLog(c)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.MessageLog
	require.NoError(t, db.First(&reloaded, "id = ?", entry.ID).Error)
	assert.Equal(t, models.LogStatusPending, reloaded.Status)
	assert.Equal(t, 2, reloaded.Attempts)
	assert.Empty(t, reloaded.ErrorDetail, "resubmission wipes the stale failure detail")
}

func TestResubmitMessageLogRejectsNonFailed(t *testing.T) {
	db := setupControllerDB(t)

	customer := models.Customer{
		Name:           "Bruno",
		Phone:          "5511987654322",
		ProductType:    models.ProductVPN,
		PlanName:       "P",
		ExpirationDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
		SendTime:       "09:00",
		IsActive:       true,
	}
	require.NoError(t, db.Create(&customer).Error)

	sentAt := time.Now()
	entry := models.MessageLog{
		CustomerID: customer.ID,
		Phone:      customer.Phone,
		Body:       "olá",
		Status:     models.LogStatusSent,
		Kind:       models.NoticeKindDueToday,
		SentAt:     &sentAt,
		Attempts:   1,
	}
	require.NoError(t, db.Create(&entry).Error)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: entry.ID.String()}}
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	ResubmitMessageLog(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
