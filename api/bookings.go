package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/internal/cancellation"
	"github.com/Domenick1991/skybooking/internal/reservation"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	reservations  reservation.UseCase
	cancellations cancellation.UseCase
}

func NewBookingHandler(reservations reservation.UseCase, cancellations cancellation.UseCase) *BookingHandler {
	return &BookingHandler{reservations: reservations, cancellations: cancellations}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/book", h.book)
	router.GET("/:id", h.detail)
	router.POST("/cancel", h.cancel)
}

type passengerRequest struct {
	Name       string `json:"name" binding:"required"`
	Age        int    `json:"age" binding:"required,gt=0"`
	Gender     string `json:"gender" binding:"required,oneof=M F O"`
	PassportNo string `json:"passport_no" binding:"required"`
}

type bookRequest struct {
	FlightID         int64              `json:"flight_id" binding:"required"`
	SeatsRequired    int                `json:"seats_required" binding:"required,gt=0"`
	TravelDate       string             `json:"travel_date" binding:"required"`
	PassengerDetails []passengerRequest `json:"passenger_details" binding:"required,min=1,dive"`
}

type bookResponse struct {
	BookingID  int64   `json:"booking_id"`
	Reference  string  `json:"reference"`
	Status     string  `json:"status"`
	TotalPrice float64 `json:"total_price"`
	Message    string  `json:"message"`
}

func (h *BookingHandler) book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid travel_date format, use YYYY-MM-DD"})
		return
	}

	passengers := make([]reservation.PassengerInput, 0, len(req.PassengerDetails))
	for _, p := range req.PassengerDetails {
		passengers = append(passengers, reservation.PassengerInput{
			Name:       p.Name,
			Age:        p.Age,
			Gender:     p.Gender,
			PassportNo: p.PassportNo,
		})
	}

	booking, err := h.reservations.Book(c.Request.Context(), reservation.BookInput{
		FlightID:   req.FlightID,
		TravelDate: travelDate,
		Seats:      req.SeatsRequired,
		UserID:     1, // TODO: take the user id from the auth layer once it is integrated
		Passengers: passengers,
	})
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, bookResponse{
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		Status:     string(booking.Status),
		TotalPrice: float64(booking.TotalPriceCents) / 100,
		Message:    fmt.Sprintf("Successfully booked %d seats", req.SeatsRequired),
	})
}

type passengerResponse struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	PassportNo string `json:"passport_no"`
}

type bookingDetailResponse struct {
	BookingID              int64               `json:"booking_id"`
	Reference              string              `json:"reference"`
	FlightID               int64               `json:"flight_id"`
	FlightNumber           string              `json:"flight_number"`
	AirlineName            string              `json:"airline_name"`
	SourceAirportCode      string              `json:"source_airport_code"`
	SourceAirportName      string              `json:"source_airport_name"`
	SourceCityName         string              `json:"source_city_name"`
	DestinationAirportCode string              `json:"destination_airport_code"`
	DestinationAirportName string              `json:"destination_airport_name"`
	DestinationCityName    string              `json:"destination_city_name"`
	DepartureTime          string              `json:"departure_time"`
	ArrivalTime            string              `json:"arrival_time"`
	Status                 string              `json:"status"`
	TotalPrice             float64             `json:"total_price"`
	PassengerCount         int                 `json:"passenger_count"`
	Passengers             []passengerResponse `json:"passengers"`
}

func (h *BookingHandler) detail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	detail, err := h.reservations.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	passengers := make([]passengerResponse, 0, len(detail.Passengers))
	for _, p := range detail.Passengers {
		passengers = append(passengers, passengerResponse{
			Name:       p.Name,
			Age:        p.Age,
			Gender:     p.Gender,
			PassportNo: p.PassportNo,
		})
	}

	c.JSON(http.StatusOK, bookingDetailResponse{
		BookingID:              detail.ID,
		Reference:              detail.Reference,
		FlightID:               detail.FlightID,
		FlightNumber:           detail.FlightNumber,
		AirlineName:            detail.AirlineName,
		SourceAirportCode:      detail.SourceAirportCode,
		SourceAirportName:      detail.SourceAirportName,
		SourceCityName:         detail.SourceCity,
		DestinationAirportCode: detail.DestinationAirportCode,
		DestinationAirportName: detail.DestinationAirportName,
		DestinationCityName:    detail.DestinationCity,
		DepartureTime:          detail.DepartureAt.Format("2006-01-02 15:04"),
		ArrivalTime:            detail.ArrivalAt.Format("2006-01-02 15:04"),
		Status:                 string(detail.Status),
		TotalPrice:             float64(detail.TotalPriceCents) / 100,
		PassengerCount:         len(detail.Passengers),
		Passengers:             passengers,
	})
}

type cancelBookingsRequest struct {
	BookingIDs []int64 `json:"booking_ids" binding:"required,min=1"`
}

type cancelBookingsResponse struct {
	CancelledCount int     `json:"cancelled_count"`
	BookingIDs     []int64 `json:"booking_ids"`
	Status         string  `json:"status"`
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelBookingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cancelled, err := h.cancellations.CancelBookings(c.Request.Context(), req.BookingIDs)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	ids := make([]int64, 0, len(cancelled))
	for _, b := range cancelled {
		ids = append(ids, b.ID)
	}
	c.JSON(http.StatusOK, cancelBookingsResponse{
		CancelledCount: len(cancelled),
		BookingIDs:     ids,
		Status:         "cancelled_by_user",
	})
}
