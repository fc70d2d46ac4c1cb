package services

import (
	"context"
	"testing"

	"renovapro-backend/models"
	"renovapro-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeliverer(t *testing.T, store *fakeStore, transport *fakeTransport) *Deliverer {
	t.Helper()
	return NewDeliverer(store, transport, utils.NewFileLog(t.TempDir()+"/delivery.log"))
}

func TestDeliverSuccess(t *testing.T) {
	store := newFakeStore()
	transport := newFakeTransport()
	d := testDeliverer(t, store, transport)

	c := &models.Customer{ID: uuid.New(), Name: "Ana", Phone: "(11) 98765-4321"}
	outcome := d.Deliver(context.Background(), c, "olá", models.NoticeKindDueToday)

	assert.True(t, outcome.Sent())
	require.Equal(t, 1, transport.sentCount())
	assert.Equal(t, "5511987654321@test", transport.sent[0].Destination)

	require.Equal(t, 1, store.loggedCount())
	entry := store.lastLog()
	assert.Equal(t, models.LogStatusSent, entry.Status)
	assert.Equal(t, "5511987654321", entry.Phone)
	assert.Equal(t, models.NoticeKindDueToday, entry.Kind)
	assert.Equal(t, 1, entry.Attempts)
	assert.NotNil(t, entry.SentAt)
}

func TestDeliverFailureLogsOnce(t *testing.T) {
	store := newFakeStore()
	transport := newFakeTransport()
	transport.failDetail = "HTTP 500: sidecar down"
	d := testDeliverer(t, store, transport)

	c := &models.Customer{ID: uuid.New(), Name: "Bruno", Phone: "11987654321"}
	outcome := d.Deliver(context.Background(), c, "olá", models.NoticeKindLeadTime)

	assert.False(t, outcome.Sent())
	assert.Equal(t, "HTTP 500: sidecar down", outcome.ErrorDetail)

	require.Equal(t, 1, store.loggedCount())
	entry := store.lastLog()
	assert.Equal(t, models.LogStatusFailed, entry.Status)
	assert.Equal(t, "HTTP 500: sidecar down", entry.ErrorDetail)
	assert.Nil(t, entry.SentAt)
	assert.Equal(t, 1, entry.Attempts)
}

func TestDeliverDoesNotTouchLastSent(t *testing.T) {
	store := newFakeStore()
	transport := newFakeTransport()
	d := testDeliverer(t, store, transport)

	c := &models.Customer{ID: uuid.New(), Name: "Carla", Phone: "11987654321"}
	d.Deliver(context.Background(), c, "olá", models.NoticeKindDueToday)

	assert.Empty(t, store.lastSent, "marking sent is the scheduler's job")
	assert.Nil(t, c.LastSentAt)
}
