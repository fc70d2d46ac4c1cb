package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TemplateKindExpiration = "expiration"
	TemplateKindRenewal    = "renewal"
	TemplateKindCustom     = "custom"
)

type MessageTemplate struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	Name        string `gorm:"not null" json:"name"`
	ProductType string `gorm:"type:varchar(10);not null" json:"productType"` // IPTV, VPN, OTHER or GENERAL
	Kind        string `gorm:"type:varchar(20);not null" json:"kind"`        // expiration, renewal or custom
	Body        string `gorm:"type:text;not null" json:"body"`

	Placeholders StringList `gorm:"type:text" json:"placeholders"`

	IsActive  bool `json:"isActive"`
	IsDefault bool `json:"isDefault"`

	gorm.Model
}

func (t *MessageTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

func ValidTemplateProductType(p string) bool {
	return ValidProductType(p) || p == ProductGeneral
}

func ValidTemplateKind(k string) bool {
	switch k {
	case TemplateKindExpiration, TemplateKindRenewal, TemplateKindCustom:
		return true
	}
	return false
}

// ClearOtherDefaults drops the default flag from every other template of the
// same (product, kind) pair, keeping at most one default per pair.
func ClearOtherDefaults(db *gorm.DB, t *MessageTemplate) error {
	return db.Model(&MessageTemplate{}).
		Where("id <> ? AND product_type = ? AND kind = ? AND is_default = ?",
			t.ID, t.ProductType, t.Kind, true).
		Update("is_default", false).Error
}

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for StringList")
}
