package services

import (
	"context"
	"time"
)

// SendTimeout bounds a single transport send.
const SendTimeout = 30 * time.Second

// TransportStatus is the connection state reported by the chat channel.
type TransportStatus struct {
	Connected  bool `json:"connected"`
	HasPairing bool `json:"hasPairing"`
}

// SendResult is the transport's verdict on one message.
type SendResult struct {
	OK     bool
	Detail string
}

// Transport is the outbound chat channel. The real implementations talk to
// a whatsapp-web.js sidecar process or to Twilio; the notification path only
// ever sees this interface.
type Transport interface {
	// Connect brings the channel up. Idempotent.
	Connect(ctx context.Context) error
	// Status reports the current connection state. Errors degrade to a
	// disconnected status, never to a failure.
	Status(ctx context.Context) TransportStatus
	// PairingCode returns the pairing artifact (a QR data URL for the
	// sidecar channel) or an error when none is pending.
	PairingCode(ctx context.Context) (string, error)
	// Send delivers a message to a normalized destination number.
	Send(ctx context.Context, destination, body string) SendResult
	// FormatDestination turns canonical digits into the channel's
	// addressing form.
	FormatDestination(digits string) string
}
