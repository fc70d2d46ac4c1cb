package services

import (
	"testing"
	"time"

	"renovapro-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormStoreForTest(t *testing.T) (*GormStore, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Renewal{},
		&models.MessageTemplate{},
		&models.MessageLog{},
		&models.Setting{},
	))

	return NewGormStore(db), db
}

func TestGormStoreListActiveCustomers(t *testing.T) {
	store, db := newGormStoreForTest(t)

	later := models.Customer{
		Name: "Depois", Phone: "5511987654321", ProductType: models.ProductIPTV,
		PlanName: "P", ExpirationDate: day(2025, time.March, 20), SendTime: "09:00", IsActive: true,
	}
	sooner := models.Customer{
		Name: "Antes", Phone: "5511987654322", ProductType: models.ProductVPN,
		PlanName: "P", ExpirationDate: day(2025, time.March, 12), SendTime: "09:00", IsActive: true,
	}
	inactive := models.Customer{
		Name: "Parado", Phone: "5511987654323", ProductType: models.ProductIPTV,
		PlanName: "P", ExpirationDate: day(2025, time.March, 11), SendTime: "09:00", IsActive: false,
	}
	require.NoError(t, db.Create(&later).Error)
	require.NoError(t, db.Create(&sooner).Error)
	require.NoError(t, db.Create(&inactive).Error)

	renewal, err := models.ApplyRenewal(&sooner, 30, 10, "", day(2025, time.March, 1))
	require.NoError(t, err)
	require.NoError(t, db.Save(&sooner).Error)
	require.NoError(t, db.Create(renewal).Error)

	customers, err := store.ListActiveCustomers()
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Depois", customers[0].Name, "ordered by expiration date")
	assert.Equal(t, "Antes", customers[1].Name)

	for _, c := range customers {
		if c.Name == "Antes" {
			assert.Len(t, c.Renewals, 1, "renewals preloaded")
		}
	}
}

func TestGormStoreDefaultTemplateLookup(t *testing.T) {
	store, db := newGormStoreForTest(t)

	require.NoError(t, db.Create(&models.MessageTemplate{
		Name: "padrão", ProductType: models.ProductIPTV, Kind: models.TemplateKindExpiration,
		Body: "b", IsActive: true, IsDefault: true,
	}).Error)
	require.NoError(t, db.Create(&models.MessageTemplate{
		Name: "inativo", ProductType: models.ProductVPN, Kind: models.TemplateKindExpiration,
		Body: "b", IsActive: false, IsDefault: true,
	}).Error)

	got, err := store.GetDefaultTemplate(models.ProductIPTV, models.TemplateKindExpiration)
	require.NoError(t, err)
	assert.Equal(t, "padrão", got.Name)

	_, err = store.GetDefaultTemplate(models.ProductVPN, models.TemplateKindExpiration)
	assert.Error(t, err, "inactive default is not served")
}

func TestGormStoreUpdateLastSent(t *testing.T) {
	store, db := newGormStoreForTest(t)

	c := models.Customer{
		Name: "Ana", Phone: "5511987654321", ProductType: models.ProductIPTV,
		PlanName: "P", ExpirationDate: day(2025, time.March, 12), SendTime: "09:00", IsActive: true,
	}
	require.NoError(t, db.Create(&c).Error)

	sentAt := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateLastSent(c.ID, sentAt))

	var loaded models.Customer
	require.NoError(t, db.First(&loaded, "id = ?", c.ID).Error)
	require.NotNil(t, loaded.LastSentAt)
	assert.True(t, loaded.LastSentAt.Equal(sentAt))
}

func TestGormStoreSettings(t *testing.T) {
	store, db := newGormStoreForTest(t)

	assert.Equal(t, "08:00", store.SettingString(SettingWindowStart, "08:00"))
	assert.Equal(t, 60, store.SettingInt(SettingMessageInterval, 60))

	_, err := models.SetSetting(db, SettingWindowStart, "10:30",
		models.SettingTypeString, models.SettingCategoryWhatsApp, "")
	require.NoError(t, err)
	_, err = models.SetSetting(db, SettingMessageInterval, 15,
		models.SettingTypeInteger, models.SettingCategoryWhatsApp, "")
	require.NoError(t, err)
	_, err = models.SetSetting(db, SettingWeekdays, []string{"monday"},
		models.SettingTypeJSON, models.SettingCategoryWhatsApp, "")
	require.NoError(t, err)

	assert.Equal(t, "10:30", store.SettingString(SettingWindowStart, "08:00"))
	assert.Equal(t, 15, store.SettingInt(SettingMessageInterval, 60))
	assert.Equal(t, []string{"monday"}, store.SettingStrings(SettingWeekdays, nil))
}
