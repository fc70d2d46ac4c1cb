package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBeginningOfDay(t *testing.T) {
	in := time.Date(2025, time.March, 10, 17, 42, 13, 999, time.UTC)
	got := BeginningOfDay(in)

	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	b := time.Date(2025, time.March, 13, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a.Add(5*time.Hour)))
}

func TestDaysBetweenAcrossTimezones(t *testing.T) {
	// Expiration dates are stored at UTC midnight; "today" comes from the
	// server clock. A west-of-UTC server must still count whole calendar
	// days.
	saoPaulo := time.FixedZone("UTC-3", -3*60*60)
	today := time.Date(2025, time.March, 10, 23, 30, 0, 0, saoPaulo)
	expiration := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(today, expiration))
	assert.Equal(t, 0, DaysBetween(today, expiration.AddDate(0, 0, -1)))

	east := time.FixedZone("UTC+5", 5*60*60)
	todayEast := time.Date(2025, time.March, 10, 1, 0, 0, 0, east)
	assert.Equal(t, 1, DaysBetween(todayEast, expiration))
}

func TestFileLogAppendTailClear(t *testing.T) {
	log := NewFileLog(t.TempDir() + "/delivery.log")

	lines, err := log.Tail(10)
	assert.NoError(t, err)
	assert.Empty(t, lines)

	log.Append("first %s", "entry")
	log.Append("second entry")

	lines, err = log.Tail(10)
	assert.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first entry")

	lines, err = log.Tail(1)
	assert.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "second entry")

	assert.NoError(t, log.Clear())
	lines, err = log.Tail(10)
	assert.NoError(t, err)
	assert.Empty(t, lines)
}
