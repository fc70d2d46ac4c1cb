package services

import (
	"strings"
	"time"
)

// Settings keys read by the governor.
const (
	SettingWindowStart     = "whatsapp_window_start"
	SettingWindowEnd       = "whatsapp_window_end"
	SettingWeekdays        = "whatsapp_weekdays"
	SettingMessageInterval = "whatsapp_message_interval"
)

var defaultWeekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Governor gates automated sends to the configured operating window. It
// holds no per-customer state; message spacing is enforced by the scheduler
// sleeping between dispatches.
type Governor struct {
	store RecordStore
}

func NewGovernor(store RecordStore) *Governor {
	return &Governor{store: store}
}

// MayConnectNow reports whether now falls inside the operating window, both
// time-of-day ([start, end] inclusive) and weekday. Malformed settings fail
// open: a broken config must not silently stop all reminders.
func (g *Governor) MayConnectNow(now time.Time) bool {
	weekdays := g.store.SettingStrings(SettingWeekdays, defaultWeekdays)
	today := strings.ToLower(now.Weekday().String())
	allowed := false
	for _, d := range weekdays {
		if strings.ToLower(strings.TrimSpace(d)) == today {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	start, err := parseClock(g.store.SettingString(SettingWindowStart, "08:00"))
	if err != nil {
		return true
	}
	end, err := parseClock(g.store.SettingString(SettingWindowEnd, "22:00"))
	if err != nil {
		return true
	}

	minutes := now.Hour()*60 + now.Minute()
	return minutes >= start && minutes <= end
}

// MessageInterval is the minimum spacing between two successive dispatches.
func (g *Governor) MessageInterval() time.Duration {
	seconds := g.store.SettingInt(SettingMessageInterval, 60)
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds) * time.Second
}

// parseClock converts an HH:MM string to minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
