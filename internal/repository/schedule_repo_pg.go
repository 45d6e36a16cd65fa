package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository interface {
	ListActive(ctx context.Context) ([]domain.Schedule, error)
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

// ListActive returns every non-deleted flight with airline and airport
// reference data joined in, ordered by departure time.
func (r *PGScheduleRepository) ListActive(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT f.id, a.airline_name, f.flight_number, src.iata_code, dst.iata_code,
		       f.departure_minute, f.arrival_minute, f.arrival_day_offset,
		       f.duration_minutes, f.base_price_cents, f.total_seats
		FROM flights f
		JOIN airlines a ON a.id = f.airline_id
		JOIN airports src ON src.id = f.source_airport_id
		JOIN airports dst ON dst.id = f.destination_airport_id
		WHERE NOT f.is_deleted
		ORDER BY f.departure_minute`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]domain.Schedule, 0)
	for rows.Next() {
		var s domain.Schedule
		if err := rows.Scan(&s.FlightID, &s.AirlineName, &s.FlightNumber, &s.SourceAirport, &s.DestinationAirport,
			&s.DepartureMinute, &s.ArrivalMinute, &s.ArrivalDayOffset,
			&s.DurationMinutes, &s.BasePriceCents, &s.TotalSeats); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

// GetFlight returns an active flight by id or domain.ErrNotFound.
func (r *PGScheduleRepository) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, airline_id, flight_number, source_airport_id, destination_airport_id,
		       departure_minute, arrival_minute, arrival_day_offset,
		       duration_minutes, base_price_cents, total_seats, is_deleted
		FROM flights
		WHERE id = $1 AND NOT is_deleted`, id)

	var f domain.Flight
	err := row.Scan(&f.ID, &f.AirlineID, &f.FlightNumber, &f.SourceAirport, &f.DestinationAirport,
		&f.DepartureMinute, &f.ArrivalMinute, &f.ArrivalDayOffset,
		&f.DurationMinutes, &f.BasePriceCents, &f.TotalSeats, &f.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return &f, nil
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
