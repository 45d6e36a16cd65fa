package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/skybooking/internal/cancellation"
	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/search"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	search        search.UseCase
	cancellations cancellation.UseCase
	defaultLimit  int
}

func NewFlightHandler(searchSvc search.UseCase, cancellations cancellation.UseCase, defaultLimit int) *FlightHandler {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return &FlightHandler{search: searchSvc, cancellations: cancellations, defaultLimit: defaultLimit}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/search", h.searchAll)
	router.POST("/search-direct", h.searchDirect)
	router.POST("/search-connecting", h.searchConnecting)
	router.POST("/internal-search", h.internalSearch)
	router.GET("/all", h.listAll)
	router.POST("/cancel", h.cancelFlight)
}

type searchRequest struct {
	SourceCity      string `json:"source_city" binding:"required"`
	DestinationCity string `json:"destination_city" binding:"required"`
	TravelDatetime  string `json:"travel_datetime" binding:"required"`
	SeatsRequired   int    `json:"seats_required" binding:"required,gt=0"`
	Limit           int    `json:"limit" binding:"omitempty,gte=1"`
}

type legResponse struct {
	FlightID           int64   `json:"flight_id"`
	AirlineName        string  `json:"airline_name"`
	FlightNumber       string  `json:"flight_number"`
	SourceAirport      string  `json:"source_airport"`
	DestinationAirport string  `json:"destination_airport"`
	SourceCity         string  `json:"source_city"`
	DestinationCity    string  `json:"destination_city"`
	DepartureTime      string  `json:"departure_time"`
	ArrivalTime        string  `json:"arrival_time"`
	DurationMinutes    int     `json:"duration_minutes"`
	BasePrice          float64 `json:"base_price"`
	AvailableSeats     int     `json:"available_seats"`
}

type itineraryResponse struct {
	TotalDurationMinutes int           `json:"total_duration_minutes"`
	TotalPrice           float64       `json:"total_price"`
	Flights              []legResponse `json:"flights"`
}

const datetimeLayout = "2006-01-02 15:04:05"

func parseTravelDatetime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid travel_datetime format, use ISO format (e.g. 2025-08-01T10:00:00)")
	}
	return t, nil
}

func (h *FlightHandler) searchInput(c *gin.Context) (search.Request, bool) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return search.Request{}, false
	}
	departure, err := parseTravelDatetime(req.TravelDatetime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return search.Request{}, false
	}
	limit := req.Limit
	if limit == 0 {
		limit = h.defaultLimit
	}
	return search.Request{
		SourceCity:      req.SourceCity,
		DestinationCity: req.DestinationCity,
		Departure:       departure,
		Seats:           req.SeatsRequired,
		Limit:           limit,
	}, true
}

func toItineraryResponses(itineraries []domain.Itinerary) []itineraryResponse {
	out := make([]itineraryResponse, 0, len(itineraries))
	for _, it := range itineraries {
		resp := itineraryResponse{
			TotalDurationMinutes: it.TotalDurationMinutes,
			TotalPrice:           float64(it.TotalPriceCents) / 100,
		}
		for _, leg := range it.Legs {
			resp.Flights = append(resp.Flights, legResponse{
				FlightID:           leg.FlightID,
				AirlineName:        leg.AirlineName,
				FlightNumber:       leg.FlightNumber,
				SourceAirport:      leg.SourceAirport,
				DestinationAirport: leg.DestinationAirport,
				SourceCity:         leg.SourceCity,
				DestinationCity:    leg.DestinationCity,
				DepartureTime:      leg.DepartureAt.Format(datetimeLayout),
				ArrivalTime:        leg.ArrivalAt.Format(datetimeLayout),
				DurationMinutes:    leg.DurationMinutes,
				BasePrice:          float64(leg.BasePriceCents) / 100,
				AvailableSeats:     leg.AvailableSeats,
			})
		}
		out = append(out, resp)
	}
	return out
}

func (h *FlightHandler) searchAll(c *gin.Context) {
	req, ok := h.searchInput(c)
	if !ok {
		return
	}
	itineraries, err := h.search.All(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toItineraryResponses(itineraries))
}

func (h *FlightHandler) searchDirect(c *gin.Context) {
	req, ok := h.searchInput(c)
	if !ok {
		return
	}
	itineraries, err := h.search.Direct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toItineraryResponses(itineraries))
}

func (h *FlightHandler) searchConnecting(c *gin.Context) {
	req, ok := h.searchInput(c)
	if !ok {
		return
	}
	itineraries, err := h.search.Connecting(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toItineraryResponses(itineraries))
}

// internalSearch returns the single cheapest direct flight as a flat list,
// matching the shape of the booking endpoints.
func (h *FlightHandler) internalSearch(c *gin.Context) {
	req, ok := h.searchInput(c)
	if !ok {
		return
	}
	req.Limit = 1
	itineraries, err := h.search.Direct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	flights := make([]legResponse, 0, 1)
	for _, it := range toItineraryResponses(itineraries) {
		flights = append(flights, it.Flights...)
	}
	c.JSON(http.StatusOK, flights)
}

type scheduleResponse struct {
	FlightID           int64   `json:"flight_id"`
	AirlineName        string  `json:"airline_name"`
	FlightNumber       string  `json:"flight_number"`
	SourceAirport      string  `json:"source_airport"`
	DestinationAirport string  `json:"destination_airport"`
	DepartureTime      string  `json:"departure_time"`
	ArrivalTime        string  `json:"arrival_time"`
	DurationMinutes    int     `json:"duration_minutes"`
	BasePrice          float64 `json:"base_price"`
	ArrivalDayOffset   int     `json:"arrival_day_offset"`
	AvailableSeats     int     `json:"available_seats"`
}

func (h *FlightHandler) listAll(c *gin.Context) {
	schedules, err := h.search.Schedules(c.Request.Context())
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	out := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, scheduleResponse{
			FlightID:           s.FlightID,
			AirlineName:        s.AirlineName,
			FlightNumber:       s.FlightNumber,
			SourceAirport:      s.SourceAirport,
			DestinationAirport: s.DestinationAirport,
			DepartureTime:      fmt.Sprintf("%02d:%02d", s.DepartureMinute/60, s.DepartureMinute%60),
			ArrivalTime:        fmt.Sprintf("%02d:%02d", s.ArrivalMinute/60, s.ArrivalMinute%60),
			DurationMinutes:    s.DurationMinutes,
			BasePrice:          float64(s.BasePriceCents) / 100,
			ArrivalDayOffset:   s.ArrivalDayOffset,
			AvailableSeats:     s.TotalSeats,
		})
	}
	c.JSON(http.StatusOK, out)
}

type cancelFlightRequest struct {
	FlightID   int64  `json:"flight_id" binding:"required"`
	FlightDate string `json:"flight_date" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

type cancelFlightResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	AffectedBookings int    `json:"affected_bookings"`
	AlternativesSent bool   `json:"alternatives_sent"`
}

func (h *FlightHandler) cancelFlight(c *gin.Context) {
	var req cancelFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.FlightDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight_date format, use YYYY-MM-DD"})
		return
	}

	result, err := h.cancellations.CancelFlight(c.Request.Context(), req.FlightID, date, req.Reason)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, cancelFlightResponse{
		Success:          result.Success,
		Message:          result.Message,
		AffectedBookings: result.AffectedBookings,
		AlternativesSent: result.AlternativesSent,
	})
}
