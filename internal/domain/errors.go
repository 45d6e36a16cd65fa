package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a requested city, flight, occurrence or
// booking does not exist or is soft-deleted.
var ErrNotFound = errors.New("not found")

// ErrEmptyBatch is returned when a batch cancellation carries no ids.
var ErrEmptyBatch = errors.New("no booking ids provided")

// CapacityError is returned when a booking requests more seats than the
// flight instance effectively has; Available lets the caller adjust.
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("only %d seats available, requested %d", e.Available, e.Requested)
}

// InvalidStateError is returned when an operation targets bookings that are
// already in a terminal cancelled state.
type InvalidStateError struct {
	BookingIDs []int64
}

func (e *InvalidStateError) Error() string {
	return "bookings already cancelled: " + joinIDs(e.BookingIDs)
}

// MissingBookingsError is returned when a batch cancellation names booking
// ids that do not exist. It unwraps to ErrNotFound.
type MissingBookingsError struct {
	BookingIDs []int64
}

func (e *MissingBookingsError) Error() string {
	return "bookings not found: " + joinIDs(e.BookingIDs)
}

func (e *MissingBookingsError) Unwrap() error { return ErrNotFound }

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ", ")
}
