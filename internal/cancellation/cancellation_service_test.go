package cancellation

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/notifier"
	"github.com/Domenick1991/skybooking/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error {
	args := m.Called(ctx, booking, passengers)
	return args.Error(0)
}

func (m *MockBookingRepository) GetDetail(ctx context.Context, id int64) (*domain.BookingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDetail), args.Error(1)
}

func (m *MockBookingRepository) CancelFlightOccurrence(ctx context.Context, flightID int64, date time.Time) (*domain.FlightCancellation, error) {
	args := m.Called(ctx, flightID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FlightCancellation), args.Error(1)
}

func (m *MockBookingRepository) CancelBookings(ctx context.Context, ids []int64) ([]domain.AffectedBooking, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AffectedBooking), args.Error(1)
}

type MockDirectoryRepository struct {
	mock.Mock
}

func (m *MockDirectoryRepository) AirportIDsByCity(ctx context.Context, city string) ([]int64, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockDirectoryRepository) FlightRoute(ctx context.Context, flightID int64) (string, string, error) {
	args := m.Called(ctx, flightID)
	return args.String(0), args.String(1), args.Error(2)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) All(ctx context.Context, req search.Request) ([]domain.Itinerary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendAlternatives(ctx context.Context, payload notifier.Alternatives) bool {
	args := m.Called(ctx, payload)
	return args.Bool(0)
}

func (m *MockNotifier) NotifyCancellation(ctx context.Context, flightID int64, date time.Time, reason string) bool {
	args := m.Called(ctx, flightID, date, reason)
	return args.Bool(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func cancelledOccurrence() *domain.FlightCancellation {
	return &domain.FlightCancellation{
		FlightID:   7,
		FlightDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Affected: []domain.AffectedBooking{
			{
				Booking: domain.Booking{
					ID:         42,
					Reference:  "ref-42",
					FlightID:   7,
					TravelDate: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
					Status:     domain.BookingStatusCancelledByAirline,
				},
				Passengers: []domain.Passenger{
					{Name: "Asha Rao", Age: 34, Gender: "F", PassportNo: "P1234567"},
					{Name: "Ravi Rao", Age: 36, Gender: "M", PassportNo: "P7654321"},
				},
			},
		},
	}
}

func TestCancellationService_CancelFlight_Success(t *testing.T) {
	repo := &MockBookingRepository{}
	directory := &MockDirectoryRepository{}
	searcher := &MockSearcher{}
	external := &MockNotifier{}
	producer := &MockProducer{}
	service := NewService(repo, directory, searcher, external, producer, "booking-events", 2)

	ctx := context.Background()
	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	cancellation := cancelledOccurrence()

	repo.On("CancelFlightOccurrence", ctx, int64(7), date).Return(cancellation, nil)
	producer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil)
	directory.On("FlightRoute", ctx, int64(7)).Return("Mumbai", "Delhi", nil)
	searcher.On("All", ctx, mock.MatchedBy(func(req search.Request) bool {
		return req.ExcludeFlightID == 7 && req.Seats == 1 && req.Limit == 2 &&
			req.SourceCity == "Mumbai" && req.DestinationCity == "Delhi"
	})).Return([]domain.Itinerary{{TotalPriceCents: 5000}}, nil)
	external.On("SendAlternatives", ctx, mock.MatchedBy(func(p notifier.Alternatives) bool {
		return p.CancelledFlightID == 7 && len(p.AffectedPassengers) == 2 && len(p.Alternatives) == 1
	})).Return(true)
	external.On("NotifyCancellation", ctx, int64(7), date, "weather").Return(true)

	result, err := service.CancelFlight(ctx, 7, date, "weather")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.AffectedBookings)
	assert.True(t, result.AlternativesSent)
	external.AssertExpectations(t)
	// one flight event plus one per affected booking
	producer.AssertNumberOfCalls(t, "Publish", 2)
}

func TestCancellationService_CancelFlight_NotifierFailureStillSucceeds(t *testing.T) {
	repo := &MockBookingRepository{}
	directory := &MockDirectoryRepository{}
	searcher := &MockSearcher{}
	external := &MockNotifier{}
	service := NewService(repo, directory, searcher, external, nil, "", 2)

	ctx := context.Background()
	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	repo.On("CancelFlightOccurrence", ctx, int64(7), date).Return(cancelledOccurrence(), nil)
	directory.On("FlightRoute", ctx, int64(7)).Return("Mumbai", "Delhi", nil)
	searcher.On("All", ctx, mock.Anything).Return([]domain.Itinerary{}, nil)
	external.On("SendAlternatives", ctx, mock.Anything).Return(false)
	external.On("NotifyCancellation", ctx, int64(7), date, "weather").Return(false)

	result, err := service.CancelFlight(ctx, 7, date, "weather")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.AlternativesSent)
}

func TestCancellationService_CancelFlight_RouteLookupFailure(t *testing.T) {
	repo := &MockBookingRepository{}
	directory := &MockDirectoryRepository{}
	external := &MockNotifier{}
	service := NewService(repo, directory, &MockSearcher{}, external, nil, "", 2)

	ctx := context.Background()
	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	repo.On("CancelFlightOccurrence", ctx, int64(7), date).Return(cancelledOccurrence(), nil)
	directory.On("FlightRoute", ctx, int64(7)).Return("", "", domain.ErrNotFound)

	result, err := service.CancelFlight(ctx, 7, date, "weather")

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.AlternativesSent)
	external.AssertNotCalled(t, "SendAlternatives", mock.Anything, mock.Anything)
}

func TestCancellationService_CancelFlight_UnknownFlight(t *testing.T) {
	repo := &MockBookingRepository{}
	service := NewService(repo, &MockDirectoryRepository{}, &MockSearcher{}, nil, nil, "", 2)

	ctx := context.Background()
	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	repo.On("CancelFlightOccurrence", ctx, int64(99), date).Return(nil, domain.ErrNotFound)

	_, err := service.CancelFlight(ctx, 99, date, "weather")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancellationService_CancelBookings_EmptyBatch(t *testing.T) {
	repo := &MockBookingRepository{}
	service := NewService(repo, &MockDirectoryRepository{}, &MockSearcher{}, nil, nil, "", 2)

	_, err := service.CancelBookings(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
	repo.AssertNotCalled(t, "CancelBookings", mock.Anything, mock.Anything)
}

func TestCancellationService_CancelBookings_Success(t *testing.T) {
	repo := &MockBookingRepository{}
	producer := &MockProducer{}
	service := NewService(repo, &MockDirectoryRepository{}, &MockSearcher{}, nil, producer, "booking-events", 2)

	ctx := context.Background()
	affected := []domain.AffectedBooking{
		{
			Booking: domain.Booking{ID: 1, Reference: "ref-1", Status: domain.BookingStatusCancelledByUser},
			Passengers: []domain.Passenger{
				{Name: "Asha Rao", Age: 34, Gender: "F", PassportNo: "P1234567"},
				{Name: "Ravi Rao", Age: 36, Gender: "M", PassportNo: "P7654321"},
			},
		},
		{
			Booking:    domain.Booking{ID: 2, Reference: "ref-2", Status: domain.BookingStatusCancelledByUser},
			Passengers: []domain.Passenger{{Name: "Meera Iyer", Age: 29, Gender: "F", PassportNo: "P0000001"}},
		},
	}
	repo.On("CancelBookings", ctx, []int64{1, 2}).Return(affected, nil)
	// the published events carry the real seat counts from the manifests
	producer.On("Publish", ctx, "booking-events", "ref-1", mock.MatchedBy(func(v interface{}) bool {
		event, ok := v.(kafka.BookingEvent)
		return ok && event.Type == "booking_cancelled" && event.Seats == 2
	})).Return(nil)
	producer.On("Publish", ctx, "booking-events", "ref-2", mock.MatchedBy(func(v interface{}) bool {
		event, ok := v.(kafka.BookingEvent)
		return ok && event.Seats == 1
	})).Return(nil)

	result, err := service.CancelBookings(ctx, []int64{1, 2})

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, int64(1), result[0].ID)
	producer.AssertExpectations(t)
}

func TestCancellationService_CancelBookings_InvalidState(t *testing.T) {
	repo := &MockBookingRepository{}
	service := NewService(repo, &MockDirectoryRepository{}, &MockSearcher{}, nil, nil, "", 2)

	ctx := context.Background()
	repo.On("CancelBookings", ctx, []int64{1, 2}).
		Return(nil, &domain.InvalidStateError{BookingIDs: []int64{2}})

	_, err := service.CancelBookings(ctx, []int64{1, 2})

	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
	assert.Equal(t, []int64{2}, stateErr.BookingIDs)
}
