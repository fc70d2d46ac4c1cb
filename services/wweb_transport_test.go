package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sidecarStub(t *testing.T, connected bool, qr string, sendStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"connected": connected, "hasQR": qr != ""})
	})
	mux.HandleFunc("/qr", func(w http.ResponseWriter, r *http.Request) {
		if qr == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"qr": qr})
	})
	mux.HandleFunc("/send-message", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["number"])
		assert.NotEmpty(t, body["message"])
		w.WriteHeader(sendStatus)
		if sendStatus != http.StatusOK {
			w.Write([]byte("session closed"))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWWebTransportStatus(t *testing.T) {
	srv := sidecarStub(t, true, "raw-qr", http.StatusOK)
	tr := NewWWebTransport(srv.URL)

	status := tr.Status(context.Background())
	assert.True(t, status.Connected)
	assert.True(t, status.HasPairing)

	require.NoError(t, tr.Connect(context.Background()))
}

func TestWWebTransportStatusUnreachable(t *testing.T) {
	tr := NewWWebTransport("http://127.0.0.1:1")

	status := tr.Status(context.Background())
	assert.False(t, status.Connected, "unreachable sidecar reads as disconnected")
}

func TestWWebTransportPairingCode(t *testing.T) {
	srv := sidecarStub(t, false, "raw-qr", http.StatusOK)
	tr := NewWWebTransport(srv.URL)

	code, err := tr.PairingCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "raw-qr", code)
}

func TestWWebTransportPairingCodeAbsent(t *testing.T) {
	srv := sidecarStub(t, true, "", http.StatusOK)
	tr := NewWWebTransport(srv.URL)

	_, err := tr.PairingCode(context.Background())
	assert.Error(t, err)
}

func TestWWebTransportSend(t *testing.T) {
	srv := sidecarStub(t, true, "", http.StatusOK)
	tr := NewWWebTransport(srv.URL)

	result := tr.Send(context.Background(), "5511987654321@c.us", "olá")
	assert.True(t, result.OK)
}

func TestWWebTransportSendFailure(t *testing.T) {
	srv := sidecarStub(t, true, "", http.StatusInternalServerError)
	tr := NewWWebTransport(srv.URL)

	result := tr.Send(context.Background(), "5511987654321@c.us", "olá")
	assert.False(t, result.OK)
	assert.Equal(t, "HTTP 500: session closed", result.Detail)
}

func TestWWebTransportFormatDestination(t *testing.T) {
	tr := NewWWebTransport("")
	assert.Equal(t, "5511987654321@c.us", tr.FormatDestination("5511987654321"))
}
