package services

import (
	"sort"
	"time"

	"renovapro-backend/models"
)

// DueNotice is the decision that one customer should be reminded now.
type DueNotice struct {
	Customer      models.Customer
	Kind          string // models.NoticeKindLeadTime or models.NoticeKindDueToday
	DaysRemaining int
	SendTime      string // HH:MM
}

// SelectDue scans active customers and picks those owed a reminder today.
// Per customer, at most one notice per run: the lead-time rule wins over
// due-today. Customers renewed within the last day or messaged within the
// cooldown are skipped regardless of day count.
func SelectDue(today, now time.Time, customers []models.Customer) []DueNotice {
	var notices []DueNotice

	for _, c := range customers {
		if !c.IsActive {
			continue
		}
		if c.RenewedWithin24h(now) {
			continue
		}
		if !c.CanSend(now) {
			continue
		}

		switch {
		case c.NeedsLeadNotice(today):
			notices = append(notices, DueNotice{
				Customer:      c,
				Kind:          models.NoticeKindLeadTime,
				DaysRemaining: c.DaysUntilExpiration(today),
				SendTime:      c.EffectiveSendTime(true),
			})
		case c.ExpiresToday(today):
			notices = append(notices, DueNotice{
				Customer:      c,
				Kind:          models.NoticeKindDueToday,
				DaysRemaining: 0,
				SendTime:      c.EffectiveSendTime(false),
			})
		}
	}

	// HH:MM strings order lexicographically; stable sort keeps input order
	// on ties.
	sort.SliceStable(notices, func(i, j int) bool {
		return notices[i].SendTime < notices[j].SendTime
	})

	return notices
}
