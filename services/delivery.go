package services

import (
	"context"
	"log"
	"time"

	"renovapro-backend/models"
	"renovapro-backend/utils"
)

// DeliveryOutcome is the pipeline's result for one attempt. Failures are a
// value here, never a panic or an error past this boundary.
type DeliveryOutcome struct {
	Status      string // models.LogStatusSent or models.LogStatusFailed
	ErrorDetail string
}

func (o DeliveryOutcome) Sent() bool {
	return o.Status == models.LogStatusSent
}

// Deliverer pushes one rendered message through the transport and records
// the attempt. It does not retry on its own and does not touch the
// customer's last-sent timestamp; both are the caller's call.
type Deliverer struct {
	store     RecordStore
	transport Transport
	fileLog   *utils.FileLog
	timeout   time.Duration
}

func NewDeliverer(store RecordStore, transport Transport, fileLog *utils.FileLog) *Deliverer {
	return &Deliverer{
		store:     store,
		transport: transport,
		fileLog:   fileLog,
		timeout:   SendTimeout,
	}
}

// Deliver sends body to the customer and writes exactly one MessageLog for
// the attempt.
func (d *Deliverer) Deliver(ctx context.Context, c *models.Customer, body, kind string) DeliveryOutcome {
	digits := utils.NormalizePhone(c.Phone)
	destination := d.transport.FormatDestination(digits)

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	now := time.Now()
	result := d.transport.Send(sendCtx, destination, body)

	outcome := DeliveryOutcome{Status: models.LogStatusSent}
	entry := models.MessageLog{
		CustomerID:  c.ID,
		Phone:       digits,
		Body:        body,
		Status:      models.LogStatusSent,
		Kind:        kind,
		ScheduledAt: &now,
		Attempts:    1,
	}

	if result.OK {
		sentAt := time.Now()
		entry.SentAt = &sentAt
		d.fileLog.Append("sent to %s (customer %s, %s)", digits, c.Name, kind)
	} else {
		outcome.Status = models.LogStatusFailed
		outcome.ErrorDetail = result.Detail
		entry.Status = models.LogStatusFailed
		entry.ErrorDetail = result.Detail
		d.fileLog.Append("send FAILED to %s (customer %s): %s", digits, c.Name, result.Detail)
	}

	if err := d.store.AppendMessageLog(&entry); err != nil {
		log.Printf("delivery: failed to log attempt for customer %s: %v", c.ID, err)
	}

	return outcome
}
