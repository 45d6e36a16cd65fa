package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed          BookingStatus = "confirmed"
	BookingStatusCancelledByUser    BookingStatus = "cancelled_by_user"
	BookingStatusCancelledByAirline BookingStatus = "cancelled_by_airline"
)

// Cancelled reports whether the status is one of the terminal cancelled
// variants. There is no transition back to confirmed.
func (s BookingStatus) Cancelled() bool {
	return s == BookingStatusCancelledByUser || s == BookingStatusCancelledByAirline
}

type Booking struct {
	ID              int64
	Reference       string
	FlightID        int64
	UserID          int64
	BookingDate     time.Time
	TravelDate      time.Time
	Status          BookingStatus
	TotalPriceCents int64
}

type Passenger struct {
	ID         int64
	BookingID  int64
	Name       string
	Age        int
	Gender     string
	PassportNo string
}

// BookingDetail is the full read model for a single booking: the booking row
// joined with flight, airline, airport and city reference data plus the
// passenger manifest.
type BookingDetail struct {
	Booking
	FlightNumber           string
	AirlineName            string
	SourceAirportCode      string
	SourceAirportName      string
	SourceCity             string
	DestinationAirportCode string
	DestinationAirportName string
	DestinationCity        string
	DepartureAt            time.Time
	ArrivalAt              time.Time
	Passengers             []Passenger
}

// AffectedBooking pairs a booking with its passenger manifest, as collected
// by an airline-initiated flight cancellation.
type AffectedBooking struct {
	Booking
	Passengers []Passenger
}

// FlightCancellation is the durable outcome of cancelling a flight
// occurrence: the instance that was zeroed and the bookings that were
// transitioned to cancelled_by_airline.
type FlightCancellation struct {
	FlightID   int64
	FlightDate time.Time
	Affected   []AffectedBooking
}

// PassengerCount sums the manifests of all affected bookings.
func (c *FlightCancellation) PassengerCount() int {
	n := 0
	for _, b := range c.Affected {
		n += len(b.Passengers)
	}
	return n
}
