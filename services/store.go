package services

import (
	"time"

	"renovapro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordStore is what the notification path needs from persistence. The
// gorm implementation is used in production; tests swap in a fake.
type RecordStore interface {
	ListActiveCustomers() ([]models.Customer, error)
	GetTemplate(id uuid.UUID) (*models.MessageTemplate, error)
	GetDefaultTemplate(productType, kind string) (*models.MessageTemplate, error)
	UpdateLastSent(customerID uuid.UUID, t time.Time) error
	AppendMessageLog(entry *models.MessageLog) error

	SettingString(key, def string) string
	SettingInt(key string, def int) int
	SettingBool(key string, def bool) bool
	SettingStrings(key string, def []string) []string
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListActiveCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.Preload("Renewals").
		Where("is_active = ?", true).
		Order("expiration_date asc").
		Find(&customers).Error
	return customers, err
}

func (s *GormStore) GetTemplate(id uuid.UUID) (*models.MessageTemplate, error) {
	var t models.MessageTemplate
	if err := s.db.First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) GetDefaultTemplate(productType, kind string) (*models.MessageTemplate, error) {
	var t models.MessageTemplate
	err := s.db.Where("product_type = ? AND kind = ? AND is_default = ? AND is_active = ?",
		productType, kind, true, true).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) UpdateLastSent(customerID uuid.UUID, t time.Time) error {
	return s.db.Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("last_sent_at", t).Error
}

func (s *GormStore) AppendMessageLog(entry *models.MessageLog) error {
	return s.db.Create(entry).Error
}

func (s *GormStore) SettingString(key, def string) string {
	if v, ok := models.GetSetting(s.db, key, def).(string); ok {
		return v
	}
	return def
}

func (s *GormStore) SettingInt(key string, def int) int {
	switch v := models.GetSetting(s.db, key, def).(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func (s *GormStore) SettingBool(key string, def bool) bool {
	if v, ok := models.GetSetting(s.db, key, def).(bool); ok {
		return v
	}
	return def
}

func (s *GormStore) SettingStrings(key string, def []string) []string {
	switch v := models.GetSetting(s.db, key, def).(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
