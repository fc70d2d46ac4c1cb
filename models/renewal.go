package models

import (
	"fmt"
	"time"

	"renovapro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RenewalPeriods are the plan durations a customer can be renewed by, in days.
var RenewalPeriods = []int{30, 60, 90, 180, 365}

type Renewal struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	RenewalDate        time.Time `gorm:"type:date;not null" json:"renewalDate"`
	PreviousExpiration time.Time `gorm:"type:date;not null" json:"previousExpiration"`
	NewExpiration      time.Time `gorm:"type:date;not null" json:"newExpiration"`
	DaysRenewed        int       `gorm:"not null" json:"daysRenewed"`
	AmountPaid         float64   `gorm:"type:decimal(10,2);not null" json:"amountPaid"`
	Note               string    `gorm:"type:text" json:"note"`

	gorm.Model
}

func (r *Renewal) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

func ValidRenewalPeriod(days int) bool {
	for _, p := range RenewalPeriods {
		if p == days {
			return true
		}
	}
	return false
}

// ApplyRenewal extends the customer's expiration by the given period and
// returns the renewal record. An already-expired customer is renewed from
// today, not from the stale expiration date. The customer is reactivated.
func ApplyRenewal(c *Customer, days int, amountPaid float64, note string, today time.Time) (*Renewal, error) {
	if !ValidRenewalPeriod(days) {
		return nil, fmt.Errorf("renewal period must be one of %v days, got %d", RenewalPeriods, days)
	}

	today = utils.BeginningOfDay(today)
	previous := c.ExpirationDate

	var newExpiration time.Time
	if utils.BeginningOfDay(c.ExpirationDate).Before(today) {
		newExpiration = today.AddDate(0, 0, days)
	} else {
		newExpiration = utils.BeginningOfDay(c.ExpirationDate).AddDate(0, 0, days)
	}

	c.ExpirationDate = newExpiration
	c.IsActive = true

	return &Renewal{
		CustomerID:         c.ID,
		RenewalDate:        today,
		PreviousExpiration: previous,
		NewExpiration:      newExpiration,
		DaysRenewed:        days,
		AmountPaid:         amountPaid,
		Note:               note,
	}, nil
}
