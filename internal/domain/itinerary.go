package domain

import "time"

// Leg is one flight segment of an itinerary, resolved against a travel date:
// departure and arrival are full timestamps and available seats reflect the
// effective availability for that date.
type Leg struct {
	FlightID           int64     `json:"flight_id"`
	AirlineName        string    `json:"airline_name"`
	FlightNumber       string    `json:"flight_number"`
	SourceAirport      string    `json:"source_airport"`
	DestinationAirport string    `json:"destination_airport"`
	SourceCity         string    `json:"source_city"`
	DestinationCity    string    `json:"destination_city"`
	DepartureAt        time.Time `json:"departure_time"`
	ArrivalAt          time.Time `json:"arrival_time"`
	DurationMinutes    int       `json:"duration_minutes"`
	BasePriceCents     int64     `json:"base_price_cents"`
	AvailableSeats     int       `json:"available_seats"`
}

// Itinerary is a derived, non-persisted search result: one leg for a direct
// flight, two legs joined at a layover airport for a connecting one.
type Itinerary struct {
	TotalDurationMinutes int   `json:"total_duration_minutes"`
	TotalPriceCents      int64 `json:"total_price_cents"`
	Legs                 []Leg `json:"flights"`
}

// Direct reports whether the itinerary is a single-leg result.
func (i Itinerary) Direct() bool {
	return len(i.Legs) == 1
}
