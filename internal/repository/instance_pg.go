package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ensureInstanceTx guarantees a flight_instances row for (flightID, date)
// and returns it locked for the remainder of the transaction. Creation is
// guarded by the unique key on (flight_id, flight_date): under concurrent
// first-time access exactly one insert wins and everyone locks the same row.
// The new row is seeded with the flight's total seat capacity.
func ensureInstanceTx(ctx context.Context, tx pgx.Tx, flightID int64, date time.Time) (*domain.FlightInstance, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO flight_instances (flight_id, flight_date, available_seats, is_deleted)
		SELECT f.id, $2, f.total_seats, false
		FROM flights f
		WHERE f.id = $1
		ON CONFLICT (flight_id, flight_date) DO NOTHING`, flightID, date)
	if err != nil {
		return nil, fmt.Errorf("ensure flight instance: %w", err)
	}

	row := tx.QueryRow(ctx, `
		SELECT flight_id, flight_date, available_seats, is_deleted
		FROM flight_instances
		WHERE flight_id = $1 AND flight_date = $2
		FOR UPDATE`, flightID, date)

	var inst domain.FlightInstance
	if err := row.Scan(&inst.FlightID, &inst.FlightDate, &inst.AvailableSeats, &inst.IsDeleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The insert selected zero rows: no such flight.
			return nil, fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("lock flight instance: %w", err)
	}
	return &inst, nil
}
