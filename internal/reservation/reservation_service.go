package reservation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/google/uuid"
)

type UseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.Booking, error)
	Detail(ctx context.Context, id int64) (*domain.BookingDetail, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Flights is the slice of the schedule store the reservation flow needs to
// validate a flight before opening the booking transaction.
type Flights interface {
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
}

type PassengerInput struct {
	Name       string
	Age        int
	Gender     string
	PassportNo string
}

type BookInput struct {
	FlightID   int64
	TravelDate time.Time
	Seats      int
	UserID     int64
	Passengers []PassengerInput
}

type Service struct {
	bookings     repository.BookingRepository
	flights      Flights
	producer     Producer
	bookingTopic string
}

func NewService(bookings repository.BookingRepository, flights Flights, producer Producer, bookingTopic string) *Service {
	return &Service{bookings: bookings, flights: flights, producer: producer, bookingTopic: bookingTopic}
}

// Book reserves seats on one flight occurrence as a single atomic unit: the
// instance is created or locked, availability checked, the booking and its
// passenger manifest written and the seats debited, or none of it happens.
// The passenger count is the seat debit amount, so it must match the
// requested seat count.
func (s *Service) Book(ctx context.Context, input BookInput) (*domain.Booking, error) {
	if input.Seats <= 0 {
		return nil, errors.New("seat count must be positive")
	}
	if len(input.Passengers) != input.Seats {
		return nil, errors.New("passenger list must match the requested seat count")
	}
	for _, p := range input.Passengers {
		if p.Name == "" || p.PassportNo == "" {
			return nil, errors.New("passenger name and passport number are required")
		}
		if p.Age <= 0 {
			return nil, errors.New("passenger age must be positive")
		}
		if p.Gender != "M" && p.Gender != "F" && p.Gender != "O" {
			return nil, errors.New("passenger gender must be M, F or O")
		}
	}

	// Unknown and soft-deleted flights fail here, before the booking
	// transaction; the repository re-checks inside it.
	if _, err := s.flights.GetFlight(ctx, input.FlightID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		Reference:  uuid.NewString(),
		FlightID:   input.FlightID,
		UserID:     input.UserID,
		TravelDate: domain.DateOf(input.TravelDate),
	}
	passengers := make([]domain.Passenger, 0, len(input.Passengers))
	for _, p := range input.Passengers {
		passengers = append(passengers, domain.Passenger{
			Name:       p.Name,
			Age:        p.Age,
			Gender:     p.Gender,
			PassportNo: p.PassportNo,
		})
	}

	if err := s.bookings.Create(ctx, booking, passengers); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking, len(passengers))
	return booking, nil
}

// Detail returns the full booking read model with the passenger manifest.
func (s *Service) Detail(ctx context.Context, id int64) (*domain.BookingDetail, error) {
	return s.bookings.GetDetail(ctx, id)
}

func (s *Service) publish(ctx context.Context, eventType string, booking *domain.Booking, seats int) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		BookingID:       booking.ID,
		Reference:       booking.Reference,
		FlightID:        booking.FlightID,
		TravelDate:      booking.TravelDate.Format("2006-01-02"),
		Seats:           seats,
		Status:          string(booking.Status),
		TotalPriceCents: booking.TotalPriceCents,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference, event); err != nil {
		log.Printf("publish %s for booking %s: %v", eventType, booking.Reference, err)
	}
}

var _ UseCase = (*Service)(nil)
