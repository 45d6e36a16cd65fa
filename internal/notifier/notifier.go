// Package notifier forwards cancellation data to the external alternatives
// API. Both calls are fire-and-forget from the engine's point of view: any
// failure is logged and reported as false, never propagated.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/domain"
)

type Notifier interface {
	SendAlternatives(ctx context.Context, payload Alternatives) bool
	NotifyCancellation(ctx context.Context, flightID int64, date time.Time, reason string) bool
}

// Alternatives is the outbound payload describing a cancelled flight, the
// passengers it stranded and the itineraries found to re-book them.
type Alternatives struct {
	CancelledFlightID  int64              `json:"cancelled_flight_id"`
	FlightDate         string             `json:"flight_date"`
	SourceCity         string             `json:"source_city"`
	DestinationCity    string             `json:"destination_city"`
	AffectedPassengers []Passenger        `json:"affected_passengers"`
	Alternatives       []domain.Itinerary `json:"alternatives"`
	Service            string             `json:"service"`
	Timestamp          string             `json:"timestamp"`
}

type Passenger struct {
	BookingID  int64  `json:"booking_id"`
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	PassportNo string `json:"passport_no"`
}

type cancellationPayload struct {
	FlightID   int64  `json:"flight_id"`
	FlightDate string `json:"flight_date"`
	Reason     string `json:"reason"`
	Timestamp  string `json:"timestamp"`
	Source     string `json:"source"`
}

type Client struct {
	alternativesURL string
	cancellationURL string
	httpClient      *http.Client
}

func NewClient(cfg config.NotifierConfig) *Client {
	return &Client{
		alternativesURL: cfg.AlternativesURL,
		cancellationURL: cfg.CancellationURL,
		httpClient:      &http.Client{Timeout: cfg.Timeout()},
	}
}

// SendAlternatives posts the cancelled-flight manifest and alternative
// itineraries to the external endpoint.
func (c *Client) SendAlternatives(ctx context.Context, payload Alternatives) bool {
	payload.Service = "flight_booking_api"
	payload.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return c.post(ctx, c.alternativesURL, payload)
}

// NotifyCancellation posts the cancellation reason as a separate event.
func (c *Client) NotifyCancellation(ctx context.Context, flightID int64, date time.Time, reason string) bool {
	return c.post(ctx, c.cancellationURL, cancellationPayload{
		FlightID:   flightID,
		FlightDate: date.Format("2006-01-02"),
		Reason:     reason,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Source:     "flight_booking_api",
	})
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notifier: marshal payload: %v", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("notifier: build request: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Source", "flight_booking_api")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("notifier: post %s: %v", url, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("notifier: post %s: unexpected status %d", url, resp.StatusCode)
		return false
	}
	return true
}

var _ Notifier = (*Client)(nil)
