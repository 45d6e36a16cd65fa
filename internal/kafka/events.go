package kafka

// BookingEvent is published to the booking topic whenever a booking is
// created or cancelled, and consumed by the notification worker.
type BookingEvent struct {
	Type            string `json:"type"`
	BookingID       int64  `json:"booking_id"`
	Reference       string `json:"reference"`
	FlightID        int64  `json:"flight_id"`
	TravelDate      string `json:"travel_date"`
	Seats           int    `json:"seats"`
	Status          string `json:"status"`
	TotalPriceCents int64  `json:"total_price_cents"`
}

// FlightEvent is published when an airline cancels a whole flight occurrence.
type FlightEvent struct {
	Type             string `json:"type"`
	FlightID         int64  `json:"flight_id"`
	FlightDate       string `json:"flight_date"`
	Reason           string `json:"reason"`
	AffectedBookings int    `json:"affected_bookings"`
}
