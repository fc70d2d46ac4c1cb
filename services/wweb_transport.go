package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WWebTransport talks to the whatsapp-web.js sidecar over HTTP. The sidecar
// owns the session; this client only asks for status, the pairing QR and
// message sends.
type WWebTransport struct {
	baseURL string
	client  *http.Client
}

func NewWWebTransport(baseURL string) *WWebTransport {
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}
	return &WWebTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: SendTimeout},
	}
}

func (t *WWebTransport) Connect(ctx context.Context) error {
	// The sidecar connects on its own; reaching its health endpoint is all
	// "connect" means here.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp sidecar unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (t *WWebTransport) Status(ctx context.Context) TransportStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/status", nil)
	if err != nil {
		return TransportStatus{}
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return TransportStatus{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return TransportStatus{}
	}

	var body struct {
		Connected bool `json:"connected"`
		HasQR     bool `json:"hasQR"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TransportStatus{}
	}
	return TransportStatus{Connected: body.Connected, HasPairing: body.HasQR}
}

func (t *WWebTransport) PairingCode(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/qr", nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("no pairing code available (HTTP %d)", resp.StatusCode)
	}

	var body struct {
		QR string `json:"qr"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.QR == "" {
		return "", fmt.Errorf("no pairing code available")
	}
	return body.QR, nil
}

func (t *WWebTransport) Send(ctx context.Context, destination, body string) SendResult {
	payload, err := json.Marshal(map[string]string{
		"number":  destination,
		"message": body,
	})
	if err != nil {
		return SendResult{Detail: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/send-message", bytes.NewReader(payload))
	if err != nil {
		return SendResult{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return SendResult{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return SendResult{Detail: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))}
	}
	return SendResult{OK: true}
}

// FormatDestination appends the whatsapp-web.js chat-id suffix.
func (t *WWebTransport) FormatDestination(digits string) string {
	return digits + "@c.us"
}

var _ Transport = (*WWebTransport)(nil)
