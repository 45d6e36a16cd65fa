package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError maps the engine's error taxonomy onto HTTP statuses:
// not-found conditions to 404, capacity shortfalls to 400 with the actual
// availability, invalid-state batches to 409. Anything unclassified gets the
// handler's fallback status.
func respondError(c *gin.Context, err error, fallback int) {
	var capErr *domain.CapacityError
	if errors.As(err, &capErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": capErr.Error(), "available_seats": capErr.Available})
		return
	}

	var stateErr *domain.InvalidStateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error(), "booking_ids": stateErr.BookingIDs})
		return
	}

	var missingErr *domain.MissingBookingsError
	if errors.As(err, &missingErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": missingErr.Error(), "booking_ids": missingErr.BookingIDs})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(fallback, gin.H{"error": err.Error()})
	}
}
