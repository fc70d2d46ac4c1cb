package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"renovapro-backend/models"

	"github.com/google/uuid"
)

// fakeStore is an in-memory RecordStore for tests.
type fakeStore struct {
	mu        sync.Mutex
	customers []models.Customer
	templates map[uuid.UUID]*models.MessageTemplate
	defaults  map[string]*models.MessageTemplate // productType + "/" + kind
	settings  map[string]interface{}

	lastSent map[uuid.UUID]time.Time
	logs     []models.MessageLog

	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		templates: map[uuid.UUID]*models.MessageTemplate{},
		defaults:  map[string]*models.MessageTemplate{},
		settings:  map[string]interface{}{},
		lastSent:  map[uuid.UUID]time.Time{},
	}
}

func (s *fakeStore) addTemplate(t *models.MessageTemplate) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.templates[t.ID] = t
	if t.IsDefault {
		s.defaults[t.ProductType+"/"+t.Kind] = t
	}
}

func (s *fakeStore) ListActiveCustomers() ([]models.Customer, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var active []models.Customer
	for _, c := range s.customers {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *fakeStore) GetTemplate(id uuid.UUID) (*models.MessageTemplate, error) {
	if t, ok := s.templates[id]; ok {
		return t, nil
	}
	return nil, errors.New("template not found")
}

func (s *fakeStore) GetDefaultTemplate(productType, kind string) (*models.MessageTemplate, error) {
	if t, ok := s.defaults[productType+"/"+kind]; ok {
		return t, nil
	}
	return nil, errors.New("no default template")
}

func (s *fakeStore) UpdateLastSent(customerID uuid.UUID, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSent[customerID] = t
	return nil
}

func (s *fakeStore) AppendMessageLog(entry *models.MessageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *fakeStore) SettingString(key, def string) string {
	if v, ok := s.settings[key].(string); ok {
		return v
	}
	return def
}

func (s *fakeStore) SettingInt(key string, def int) int {
	if v, ok := s.settings[key].(int); ok {
		return v
	}
	return def
}

func (s *fakeStore) SettingBool(key string, def bool) bool {
	if v, ok := s.settings[key].(bool); ok {
		return v
	}
	return def
}

func (s *fakeStore) SettingStrings(key string, def []string) []string {
	if v, ok := s.settings[key].([]string); ok {
		return v
	}
	return def
}

func (s *fakeStore) loggedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

func (s *fakeStore) lastLog() models.MessageLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs[len(s.logs)-1]
}

// fakeTransport records sends and can be told to fail, stall or disconnect.
type fakeTransport struct {
	mu         sync.Mutex
	connected  bool
	pairing    string
	failDetail string        // non-empty makes sends fail
	sendDelay  time.Duration // simulated transport latency

	sent []struct{ Destination, Body string }
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{connected: true}
}

func (t *fakeTransport) Connect(ctx context.Context) error { return nil }

func (t *fakeTransport) Status(ctx context.Context) TransportStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TransportStatus{Connected: t.connected, HasPairing: t.pairing != ""}
}

func (t *fakeTransport) PairingCode(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pairing == "" {
		return "", errors.New("no pairing pending")
	}
	return t.pairing, nil
}

func (t *fakeTransport) Send(ctx context.Context, destination, body string) SendResult {
	t.mu.Lock()
	delay := t.sendDelay
	t.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failDetail != "" {
		return SendResult{OK: false, Detail: t.failDetail}
	}
	t.sent = append(t.sent, struct{ Destination, Body string }{destination, body})
	return SendResult{OK: true}
}

func (t *fakeTransport) FormatDestination(digits string) string {
	return digits + "@test"
}

func (t *fakeTransport) setConnected(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = v
}

func (t *fakeTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}
