package models

import (
	"time"

	"renovapro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProductIPTV    = "IPTV"
	ProductVPN     = "VPN"
	ProductOther   = "OTHER"
	ProductGeneral = "GENERAL"
)

// SendCooldown is the minimum spacing between two automated sends to the
// same customer. The scheduler may poll more often than once per day; this
// is what keeps it from messaging the same person twice.
const SendCooldown = 2 * time.Hour

type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	Name        string  `gorm:"not null" json:"name"`
	Phone       string  `gorm:"not null" json:"phone"`
	ProductType string  `gorm:"type:varchar(10);not null" json:"productType"` // IPTV, VPN or OTHER
	PlanName    string  `gorm:"not null" json:"planName"`
	PlanPrice   float64 `gorm:"type:decimal(10,2);not null" json:"planPrice"`

	ExpirationDate time.Time `gorm:"type:date;not null" json:"expirationDate"`
	SendTime       string    `gorm:"type:varchar(5);not null" json:"sendTime"` // HH:MM

	TemplateID    *uuid.UUID `gorm:"type:uuid;index" json:"templateId"`
	CustomMessage string     `gorm:"type:text" json:"customMessage"`

	// Early reminder settings. No column defaults here: a column default
	// would make gorm omit explicit false/zero values on insert, silently
	// flipping an opt-out back on. Callers set the defaults.
	LeadNoticeEnabled bool    `json:"leadNoticeEnabled"`
	LeadDays          int     `json:"leadDays"`
	LeadSendTime      *string `gorm:"type:varchar(5)" json:"leadSendTime"`

	Comment       string     `gorm:"type:text" json:"comment"`
	LastCommentAt *time.Time `json:"lastCommentAt"`

	IsActive   bool       `json:"isActive"`
	LastSentAt *time.Time `json:"lastSentAt"`

	Template    *MessageTemplate `gorm:"foreignKey:TemplateID" json:"-"`
	Renewals    []Renewal        `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	MessageLogs []MessageLog     `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// DaysUntilExpiration returns the signed day count between today and the
// expiration date. Negative means already expired.
func (c *Customer) DaysUntilExpiration(today time.Time) int {
	return utils.DaysBetween(today, c.ExpirationDate)
}

func (c *Customer) IsExpired(today time.Time) bool {
	return c.DaysUntilExpiration(today) < 0
}

func (c *Customer) ExpiresToday(today time.Time) bool {
	return c.DaysUntilExpiration(today) == 0
}

// NeedsLeadNotice reports whether the early reminder fires today.
func (c *Customer) NeedsLeadNotice(today time.Time) bool {
	if !c.LeadNoticeEnabled {
		return false
	}
	return c.DaysUntilExpiration(today) == c.LeadDays
}

// RenewedWithin24h reports whether the most recent renewal happened within
// the last day. Freshly renewed customers are not reminded again (renewal
// grace). Requires Renewals to be loaded.
func (c *Customer) RenewedWithin24h(now time.Time) bool {
	if len(c.Renewals) == 0 {
		return false
	}
	latest := c.Renewals[0].RenewalDate
	for _, r := range c.Renewals[1:] {
		if r.RenewalDate.After(latest) {
			latest = r.RenewalDate
		}
	}
	limit := utils.BeginningOfDay(now).AddDate(0, 0, -1)
	return !latest.Before(limit)
}

// CanSend reports whether the anti-spam cooldown since the last send has
// elapsed.
func (c *Customer) CanSend(now time.Time) bool {
	if c.LastSentAt == nil {
		return true
	}
	return !c.LastSentAt.After(now.Add(-SendCooldown))
}

// EffectiveSendTime returns the HH:MM slot a notice should be delivered at.
// Lead notices honor the customer's dedicated reminder time when set;
// due-today notices always use the regular send time.
func (c *Customer) EffectiveSendTime(lead bool) string {
	if lead && c.LeadSendTime != nil && *c.LeadSendTime != "" {
		return *c.LeadSendTime
	}
	return c.SendTime
}

func ValidProductType(p string) bool {
	switch p {
	case ProductIPTV, ProductVPN, ProductOther:
		return true
	}
	return false
}
