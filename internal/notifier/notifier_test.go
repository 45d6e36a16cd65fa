package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/stretchr/testify/assert"
)

func newTestClient(alternativesURL, cancellationURL string) *Client {
	return NewClient(config.NotifierConfig{
		AlternativesURL: alternativesURL,
		CancellationURL: cancellationURL,
		TimeoutSeconds:  2,
	})
}

func TestClient_SendAlternatives(t *testing.T) {
	var received Alternatives
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "flight_booking_api", r.Header.Get("X-API-Source"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	ok := client.SendAlternatives(context.Background(), Alternatives{
		CancelledFlightID: 7,
		FlightDate:        "2025-08-01",
		SourceCity:        "Mumbai",
		DestinationCity:   "Delhi",
	})

	assert.True(t, ok)
	assert.Equal(t, int64(7), received.CancelledFlightID)
	assert.Equal(t, "flight_booking_api", received.Service)
	assert.NotEmpty(t, received.Timestamp)
}

func TestClient_NotifyCancellation(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)
	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	ok := client.NotifyCancellation(context.Background(), 7, date, "weather")

	assert.True(t, ok)
	assert.Equal(t, float64(7), received["flight_id"])
	assert.Equal(t, "2025-08-01", received["flight_date"])
	assert.Equal(t, "weather", received["reason"])
}

func TestClient_post_non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	ok := client.NotifyCancellation(context.Background(), 7, time.Now(), "weather")
	assert.False(t, ok)
}

func TestClient_post_unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, server.URL)

	ok := client.SendAlternatives(context.Background(), Alternatives{CancelledFlightID: 7})
	assert.False(t, ok)
}
