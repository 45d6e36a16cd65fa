package domain

import "time"

// Flight is a recurring scheduled service: route, times-of-day and capacity,
// independent of any calendar date. Times-of-day are stored as minutes since
// midnight so they compare and bind as plain integers.
type Flight struct {
	ID                 int64
	AirlineID          int64
	FlightNumber       string
	SourceAirport      int64
	DestinationAirport int64
	DepartureMinute    int
	ArrivalMinute      int
	ArrivalDayOffset   int
	DurationMinutes    int
	BasePriceCents     int64
	TotalSeats         int
	IsDeleted          bool
}

// FlightInstance is the date-specific operational record for a flight.
// It is created lazily the first time a booking or cancellation touches the
// date. A deleted instance marks a cancelled occurrence and always carries
// zero available seats.
type FlightInstance struct {
	FlightID       int64
	FlightDate     time.Time
	AvailableSeats int
	IsDeleted      bool
}

// Schedule is the read model for listing active flights, with airline and
// airport reference data joined in.
type Schedule struct {
	FlightID           int64  `json:"flight_id"`
	AirlineName        string `json:"airline_name"`
	FlightNumber       string `json:"flight_number"`
	SourceAirport      string `json:"source_airport"`
	DestinationAirport string `json:"destination_airport"`
	DepartureMinute    int    `json:"departure_minute"`
	ArrivalMinute      int    `json:"arrival_minute"`
	ArrivalDayOffset   int    `json:"arrival_day_offset"`
	DurationMinutes    int    `json:"duration_minutes"`
	BasePriceCents     int64  `json:"base_price_cents"`
	TotalSeats         int    `json:"total_seats"`
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MinuteOfDay returns t's time-of-day as minutes since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// CombineDateMinute builds a full timestamp from a travel date, a
// minutes-since-midnight time-of-day and an arrival day offset.
func CombineDateMinute(date time.Time, minute, dayOffset int) time.Time {
	return DateOf(date).AddDate(0, 0, dayOffset).Add(time.Duration(minute) * time.Minute)
}
