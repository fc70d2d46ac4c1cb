package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LogStatusSent    = "sent"
	LogStatusFailed  = "failed"
	LogStatusPending = "pending"
)

const (
	NoticeKindLeadTime = "lead_time"
	NoticeKindDueToday = "due_today"
	NoticeKindManual   = "manual"
)

// MessageLog records one delivery attempt. Rows are created by the delivery
// pipeline and only touched afterwards to resubmit a failed attempt.
type MessageLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	Phone  string `gorm:"type:varchar(30);not null" json:"phone"`
	Body   string `gorm:"type:text;not null" json:"body"`
	Status string `gorm:"type:varchar(20);not null" json:"status"` // sent, failed or pending
	Kind   string `gorm:"type:varchar(20)" json:"kind"`

	ScheduledAt *time.Time `json:"scheduledAt"`
	SentAt      *time.Time `json:"sentAt"`
	ErrorDetail string     `gorm:"type:text" json:"errorDetail"`
	Attempts    int        `json:"attempts"`

	gorm.Model
}

func (m *MessageLog) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

func ValidLogStatus(s string) bool {
	switch s {
	case LogStatusSent, LogStatusFailed, LogStatusPending:
		return true
	}
	return false
}
