package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SettingTypeString  = "string"
	SettingTypeInteger = "integer"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

const (
	SettingCategoryWhatsApp     = "whatsapp"
	SettingCategoryAI           = "ai"
	SettingCategorySystem       = "system"
	SettingCategoryNotification = "notification"
)

// Setting is a typed key/value configuration row. Values are stored as text
// and converted on read; a malformed value degrades to the zero value of its
// type rather than erroring.
type Setting struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	Key         string `gorm:"uniqueIndex;not null" json:"key"`
	Value       string `gorm:"type:text" json:"-"`
	Description string `gorm:"type:varchar(255)" json:"description"`
	Type        string `gorm:"type:varchar(20);default:'string'" json:"type"`
	Category    string `gorm:"type:varchar(50)" json:"category"`

	gorm.Model
}

func (s *Setting) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// TypedValue converts the stored text to the setting's declared type.
func (s *Setting) TypedValue() interface{} {
	switch s.Type {
	case SettingTypeInteger:
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(s.Value), "%d", &n); err != nil {
			return 0
		}
		return n
	case SettingTypeBoolean:
		switch strings.ToLower(strings.TrimSpace(s.Value)) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case SettingTypeJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(s.Value), &v); err != nil {
			return map[string]interface{}{}
		}
		return v
	default:
		return s.Value
	}
}

// SetTypedValue stores any value as text, JSON-encoding when the setting is
// declared as json.
func (s *Setting) SetTypedValue(v interface{}) error {
	if s.Type == SettingTypeJSON {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		s.Value = string(b)
		return nil
	}
	s.Value = fmt.Sprint(v)
	return nil
}

// MarshalJSON exposes the typed value instead of the raw text.
func (s Setting) MarshalJSON() ([]byte, error) {
	type alias Setting
	return json.Marshal(struct {
		alias
		Value interface{} `json:"value"`
	}{alias(s), s.TypedValue()})
}

// GetSetting fetches a setting value, falling back to def when the key is
// absent.
func GetSetting(db *gorm.DB, key string, def interface{}) interface{} {
	var s Setting
	if err := db.Where("key = ?", key).First(&s).Error; err != nil {
		return def
	}
	return s.TypedValue()
}

// SetSetting upserts a setting. Type and category stick from the first write.
func SetSetting(db *gorm.DB, key string, value interface{}, typ, category, description string) (*Setting, error) {
	var s Setting
	err := db.Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = Setting{Key: key, Type: typ, Category: category, Description: description}
		if err := s.SetTypedValue(value); err != nil {
			return nil, err
		}
		if err := db.Create(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	} else if err != nil {
		return nil, err
	}

	if err := s.SetTypedValue(value); err != nil {
		return nil, err
	}
	if err := db.Save(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
