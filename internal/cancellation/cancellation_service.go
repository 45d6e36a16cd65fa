package cancellation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/notifier"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/search"
)

type UseCase interface {
	CancelFlight(ctx context.Context, flightID int64, date time.Time, reason string) (*FlightCancellationResult, error)
	CancelBookings(ctx context.Context, ids []int64) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Searcher is the slice of the search use case the cancellation workflow
// needs to find re-booking alternatives.
type Searcher interface {
	All(ctx context.Context, req search.Request) ([]domain.Itinerary, error)
}

// FlightCancellationResult reports the durable outcome of a flight
// cancellation plus whether the best-effort alternative notification went
// through. AlternativesSent never affects the cancellation itself.
type FlightCancellationResult struct {
	Success          bool
	Message          string
	AffectedBookings int
	AlternativesSent bool
}

type Service struct {
	bookings          repository.BookingRepository
	directory         repository.DirectoryRepository
	searcher          Searcher
	notifier          notifier.Notifier
	producer          Producer
	bookingTopic      string
	alternativesLimit int
}

func NewService(
	bookings repository.BookingRepository,
	directory repository.DirectoryRepository,
	searcher Searcher,
	external notifier.Notifier,
	producer Producer,
	bookingTopic string,
	alternativesLimit int,
) *Service {
	if alternativesLimit <= 0 {
		alternativesLimit = 2
	}
	return &Service{
		bookings:          bookings,
		directory:         directory,
		searcher:          searcher,
		notifier:          external,
		producer:          producer,
		bookingTopic:      bookingTopic,
		alternativesLimit: alternativesLimit,
	}
}

// CancelFlight runs the airline-initiated cascade. The durable part commits
// first: affected bookings move to cancelled_by_airline and the instance is
// zeroed and marked deleted, all in one transaction. Only then are
// alternative itineraries searched (same cities, same nominal date, the
// cancelled flight excluded) and forwarded to the external notifier; a slow
// or failing notifier can neither block nor undo the cancellation.
func (s *Service) CancelFlight(ctx context.Context, flightID int64, date time.Time, reason string) (*FlightCancellationResult, error) {
	cancellation, err := s.bookings.CancelFlightOccurrence(ctx, flightID, date)
	if err != nil {
		return nil, err
	}

	s.publishFlightEvent(ctx, cancellation, reason)
	for _, affected := range cancellation.Affected {
		s.publishBookingEvent(ctx, "booking_cancelled", affected)
	}

	sent := s.notifyAlternatives(ctx, cancellation, reason)

	return &FlightCancellationResult{
		Success: true,
		Message: fmt.Sprintf("cancelled flight %d on %s, %d bookings affected",
			flightID, cancellation.FlightDate.Format("2006-01-02"), len(cancellation.Affected)),
		AffectedBookings: len(cancellation.Affected),
		AlternativesSent: sent,
	}, nil
}

func (s *Service) notifyAlternatives(ctx context.Context, cancellation *domain.FlightCancellation, reason string) bool {
	if s.notifier == nil {
		return false
	}

	sourceCity, destinationCity, err := s.directory.FlightRoute(ctx, cancellation.FlightID)
	if err != nil {
		log.Printf("cancel flight %d: resolve route: %v", cancellation.FlightID, err)
		return false
	}

	alternatives, err := s.searcher.All(ctx, search.Request{
		SourceCity:      sourceCity,
		DestinationCity: destinationCity,
		Departure:       cancellation.FlightDate,
		Seats:           1,
		Limit:           s.alternativesLimit,
		ExcludeFlightID: cancellation.FlightID,
	})
	if err != nil {
		log.Printf("cancel flight %d: search alternatives: %v", cancellation.FlightID, err)
		alternatives = nil
	}

	passengers := make([]notifier.Passenger, 0, cancellation.PassengerCount())
	for _, b := range cancellation.Affected {
		for _, p := range b.Passengers {
			passengers = append(passengers, notifier.Passenger{
				BookingID:  b.ID,
				Name:       p.Name,
				Age:        p.Age,
				Gender:     p.Gender,
				PassportNo: p.PassportNo,
			})
		}
	}

	sent := s.notifier.SendAlternatives(ctx, notifier.Alternatives{
		CancelledFlightID:  cancellation.FlightID,
		FlightDate:         cancellation.FlightDate.Format("2006-01-02"),
		SourceCity:         sourceCity,
		DestinationCity:    destinationCity,
		AffectedPassengers: passengers,
		Alternatives:       alternatives,
	})
	if !s.notifier.NotifyCancellation(ctx, cancellation.FlightID, cancellation.FlightDate, reason) {
		log.Printf("cancel flight %d: cancellation notification failed", cancellation.FlightID)
	}
	return sent
}

// CancelBookings cancels a batch of bookings on the user's behalf. The batch
// validates as a whole: an empty list, an unknown id or an already-cancelled
// id fails everything before any write. Seats are credited back per distinct
// (flight, date) in the same transaction as the status transitions.
func (s *Service) CancelBookings(ctx context.Context, ids []int64) ([]domain.Booking, error) {
	if len(ids) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	affected, err := s.bookings.CancelBookings(ctx, ids)
	if err != nil {
		return nil, err
	}

	cancelled := make([]domain.Booking, 0, len(affected))
	for _, b := range affected {
		s.publishBookingEvent(ctx, "booking_cancelled", b)
		cancelled = append(cancelled, b.Booking)
	}
	return cancelled, nil
}

func (s *Service) publishBookingEvent(ctx context.Context, eventType string, b domain.AffectedBooking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		BookingID:       b.ID,
		Reference:       b.Reference,
		FlightID:        b.FlightID,
		TravelDate:      b.TravelDate.Format("2006-01-02"),
		Seats:           len(b.Passengers),
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.Reference, event); err != nil {
		log.Printf("publish %s for booking %s: %v", eventType, b.Reference, err)
	}
}

func (s *Service) publishFlightEvent(ctx context.Context, cancellation *domain.FlightCancellation, reason string) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.FlightEvent{
		Type:             "flight_cancelled",
		FlightID:         cancellation.FlightID,
		FlightDate:       cancellation.FlightDate.Format("2006-01-02"),
		Reason:           reason,
		AffectedBookings: len(cancellation.Affected),
	}
	key := fmt.Sprintf("flight-%d", cancellation.FlightID)
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		log.Printf("publish flight_cancelled for flight %d: %v", cancellation.FlightID, err)
	}
}

var _ UseCase = (*Service)(nil)
