package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/cancellation"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSearchUseCase is a mock implementation of search.UseCase
type MockSearchUseCase struct {
	mock.Mock
}

func (m *MockSearchUseCase) Direct(ctx context.Context, req search.Request) ([]domain.Itinerary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockSearchUseCase) Connecting(ctx context.Context, req search.Request) ([]domain.Itinerary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockSearchUseCase) All(ctx context.Context, req search.Request) ([]domain.Itinerary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockSearchUseCase) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

// MockFlightCancellationUseCase is a mock implementation of cancellation.UseCase
type MockFlightCancellationUseCase struct {
	mock.Mock
}

func (m *MockFlightCancellationUseCase) CancelFlight(ctx context.Context, flightID int64, date time.Time, reason string) (*cancellation.FlightCancellationResult, error) {
	args := m.Called(ctx, flightID, date, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cancellation.FlightCancellationResult), args.Error(1)
}

func (m *MockFlightCancellationUseCase) CancelBookings(ctx context.Context, ids []int64) ([]domain.Booking, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func sampleItineraries() []domain.Itinerary {
	return []domain.Itinerary{
		{
			TotalDurationMinutes: 90,
			TotalPriceCents:      10000,
			Legs: []domain.Leg{
				{
					FlightID:        7,
					AirlineName:     "SkyJet",
					FlightNumber:    "SK100",
					SourceCity:      "Mumbai",
					DestinationCity: "Delhi",
					DepartureAt:     time.Date(2025, 8, 1, 10, 30, 0, 0, time.UTC),
					ArrivalAt:       time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
					DurationMinutes: 90,
					BasePriceCents:  10000,
					AvailableSeats:  50,
				},
			},
		},
	}
}

func searchBody() []byte {
	body, _ := json.Marshal(searchRequest{
		SourceCity:      "Mumbai",
		DestinationCity: "Delhi",
		TravelDatetime:  "2025-08-01T10:00:00",
		SeatsRequired:   2,
	})
	return body
}

func TestFlightHandler_searchAll(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("POST", "/flights/search", bytes.NewReader(searchBody()))
	c.Request.Header.Set("Content-Type", "application/json")

	mockSearch.On("All", c.Request.Context(), mock.MatchedBy(func(req search.Request) bool {
		// the omitted limit falls back to the handler default
		return req.Limit == 5 && req.Seats == 2 &&
			req.Departure.Equal(time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))
	})).Return(sampleItineraries(), nil)

	handler.searchAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []itineraryResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, 100.0, response[0].TotalPrice)
	assert.Equal(t, "2025-08-01 10:30:00", response[0].Flights[0].DepartureTime)

	mockSearch.AssertExpectations(t)
}

func TestFlightHandler_searchAll_unknownCity(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("POST", "/flights/search", bytes.NewReader(searchBody()))
	c.Request.Header.Set("Content-Type", "application/json")

	mockSearch.On("All", c.Request.Context(), mock.Anything).Return(nil, domain.ErrNotFound)

	handler.searchAll(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_search_invalidDatetime(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(searchRequest{
		SourceCity:      "Mumbai",
		DestinationCity: "Delhi",
		TravelDatetime:  "01/08/2025 10:00",
		SeatsRequired:   2,
	})
	c.Request = httptest.NewRequest("POST", "/flights/search-direct", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.searchDirect(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSearch.AssertNotCalled(t, "Direct", mock.Anything, mock.Anything)
}

func TestFlightHandler_internalSearch(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("POST", "/flights/internal-search", bytes.NewReader(searchBody()))
	c.Request.Header.Set("Content-Type", "application/json")

	mockSearch.On("Direct", c.Request.Context(), mock.MatchedBy(func(req search.Request) bool {
		return req.Limit == 1
	})).Return(sampleItineraries(), nil)

	handler.internalSearch(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []legResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, int64(7), response[0].FlightID)

	mockSearch.AssertExpectations(t)
}

func TestFlightHandler_listAll(t *testing.T) {
	mockSearch := &MockSearchUseCase{}
	handler := NewFlightHandler(mockSearch, nil, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/flights/all", nil)

	mockSearch.On("Schedules", c.Request.Context()).Return([]domain.Schedule{
		{
			FlightID:        7,
			AirlineName:     "SkyJet",
			FlightNumber:    "SK100",
			DepartureMinute: 630,
			ArrivalMinute:   720,
			DurationMinutes: 90,
			BasePriceCents:  10000,
			TotalSeats:      50,
		},
	}, nil)

	handler.listAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []scheduleResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)
	assert.Equal(t, "10:30", response[0].DepartureTime)
	assert.Equal(t, "12:00", response[0].ArrivalTime)
	assert.Equal(t, 100.0, response[0].BasePrice)
}

func TestFlightHandler_cancelFlight(t *testing.T) {
	mockCancellations := &MockFlightCancellationUseCase{}
	handler := NewFlightHandler(&MockSearchUseCase{}, mockCancellations, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(cancelFlightRequest{
		FlightID:   7,
		FlightDate: "2025-08-01",
		Reason:     "weather",
	})
	c.Request = httptest.NewRequest("POST", "/flights/cancel", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	mockCancellations.On("CancelFlight", c.Request.Context(), int64(7), date, "weather").
		Return(&cancellation.FlightCancellationResult{
			Success:          true,
			Message:          "cancelled flight 7 on 2025-08-01, 3 bookings affected",
			AffectedBookings: 3,
			AlternativesSent: true,
		}, nil)

	handler.cancelFlight(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response cancelFlightResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.Success)
	assert.Equal(t, 3, response.AffectedBookings)
	assert.True(t, response.AlternativesSent)

	mockCancellations.AssertExpectations(t)
}

func TestFlightHandler_cancelFlight_invalidDate(t *testing.T) {
	mockCancellations := &MockFlightCancellationUseCase{}
	handler := NewFlightHandler(&MockSearchUseCase{}, mockCancellations, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(cancelFlightRequest{
		FlightID:   7,
		FlightDate: "01-08-2025",
		Reason:     "weather",
	})
	c.Request = httptest.NewRequest("POST", "/flights/cancel", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.cancelFlight(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockCancellations.AssertNotCalled(t, "CancelFlight", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightHandler_cancelFlight_unknownFlight(t *testing.T) {
	mockCancellations := &MockFlightCancellationUseCase{}
	handler := NewFlightHandler(&MockSearchUseCase{}, mockCancellations, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(cancelFlightRequest{
		FlightID:   99,
		FlightDate: "2025-08-01",
		Reason:     "weather",
	})
	c.Request = httptest.NewRequest("POST", "/flights/cancel", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	date := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	mockCancellations.On("CancelFlight", c.Request.Context(), int64(99), date, "weather").
		Return(nil, domain.ErrNotFound)

	handler.cancelFlight(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
