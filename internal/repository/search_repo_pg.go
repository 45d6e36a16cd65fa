package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchQuery carries the resolved inputs of an itinerary search: airport id
// sets on both ends, the nominal travel date, the minimum departure
// time-of-day, the seat requirement and the result cap. ExcludeFlightID,
// when non-zero, removes one flight from consideration on every leg (used
// when searching alternatives for a cancelled flight).
type SearchQuery struct {
	SourceAirports      []int64
	DestinationAirports []int64
	TravelDate          time.Time
	MinDepartureMinute  int
	Seats               int
	Limit               int
	ExcludeFlightID     int64
}

type SearchRepository interface {
	Direct(ctx context.Context, q SearchQuery) ([]domain.Itinerary, error)
	Connecting(ctx context.Context, q SearchQuery) ([]domain.Itinerary, error)
}

type PGSearchRepository struct {
	db *pgxpool.Pool
}

func NewSearchRepository(db *pgxpool.Pool) SearchRepository {
	return &PGSearchRepository{db: db}
}

// inList renders count placeholders starting at position start, e.g.
// "$3,$4,$5". Only the shape is built here; values are always bound.
func inList(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ",")
}

func appendIDs(args []any, ids []int64) []any {
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

// Direct finds single-leg itineraries: active flights from any source
// airport to any destination airport, departing at or after the threshold,
// with effective availability (instance override if present, else total
// seats) covering the requested seat count. A deleted instance excludes the
// flight for that date outright. Ordered by price, then departure time.
func (r *PGSearchRepository) Direct(ctx context.Context, q SearchQuery) ([]domain.Itinerary, error) {
	args := []any{domain.DateOf(q.TravelDate)}

	srcShape := inList(len(args)+1, len(q.SourceAirports))
	args = appendIDs(args, q.SourceAirports)
	dstShape := inList(len(args)+1, len(q.DestinationAirports))
	args = appendIDs(args, q.DestinationAirports)

	args = append(args, q.MinDepartureMinute)
	minPos := len(args)
	args = append(args, q.Seats)
	seatsPos := len(args)
	exclude := ""
	if q.ExcludeFlightID != 0 {
		args = append(args, q.ExcludeFlightID)
		exclude = fmt.Sprintf("AND f.id <> $%d", len(args))
	}
	args = append(args, q.Limit)
	limitPos := len(args)

	query := fmt.Sprintf(`
		SELECT f.id, a.airline_name, f.flight_number,
		       src.iata_code, dst.iata_code, sc.city_name, dc.city_name,
		       f.departure_minute, f.arrival_minute, f.arrival_day_offset,
		       f.duration_minutes, f.base_price_cents,
		       COALESCE(fi.available_seats, f.total_seats) AS available_seats
		FROM flights f
		JOIN airlines a ON a.id = f.airline_id
		JOIN airports src ON src.id = f.source_airport_id
		JOIN airports dst ON dst.id = f.destination_airport_id
		JOIN cities sc ON sc.id = src.city_id
		JOIN cities dc ON dc.id = dst.city_id
		LEFT JOIN flight_instances fi ON fi.flight_id = f.id AND fi.flight_date = $1
		WHERE f.source_airport_id IN (%s)
		  AND f.destination_airport_id IN (%s)
		  AND NOT f.is_deleted
		  AND (fi.flight_id IS NULL OR NOT fi.is_deleted)
		  AND f.departure_minute >= $%d
		  AND COALESCE(fi.available_seats, f.total_seats) >= $%d
		  %s
		ORDER BY f.base_price_cents ASC, f.departure_minute ASC
		LIMIT $%d`,
		srcShape, dstShape, minPos, seatsPos, exclude, limitPos)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("direct search: %w", err)
	}
	defer rows.Close()

	date := domain.DateOf(q.TravelDate)
	results := make([]domain.Itinerary, 0)
	for rows.Next() {
		var leg domain.Leg
		var depMin, arrMin, dayOffset int
		if err := rows.Scan(&leg.FlightID, &leg.AirlineName, &leg.FlightNumber,
			&leg.SourceAirport, &leg.DestinationAirport, &leg.SourceCity, &leg.DestinationCity,
			&depMin, &arrMin, &dayOffset,
			&leg.DurationMinutes, &leg.BasePriceCents, &leg.AvailableSeats); err != nil {
			return nil, fmt.Errorf("scan direct leg: %w", err)
		}
		leg.DepartureAt = domain.CombineDateMinute(date, depMin, 0)
		leg.ArrivalAt = domain.CombineDateMinute(date, arrMin, dayOffset)
		results = append(results, domain.Itinerary{
			TotalDurationMinutes: leg.DurationMinutes,
			TotalPriceCents:      leg.BasePriceCents,
			Legs:                 []domain.Leg{leg},
		})
	}
	return results, rows.Err()
}

// Connecting finds two-leg itineraries joined at a common layover airport.
// Both legs are evaluated against the same nominal travel date, the
// departure threshold applies to the first leg only, and no minimum
// connection time is enforced. Ordered by total price, then total duration.
func (r *PGSearchRepository) Connecting(ctx context.Context, q SearchQuery) ([]domain.Itinerary, error) {
	args := []any{domain.DateOf(q.TravelDate)}

	srcShape := inList(len(args)+1, len(q.SourceAirports))
	args = appendIDs(args, q.SourceAirports)
	dstShape := inList(len(args)+1, len(q.DestinationAirports))
	args = appendIDs(args, q.DestinationAirports)

	args = append(args, q.MinDepartureMinute)
	minPos := len(args)
	args = append(args, q.Seats)
	seatsPos := len(args)
	exclude := ""
	if q.ExcludeFlightID != 0 {
		args = append(args, q.ExcludeFlightID)
		exclude = fmt.Sprintf("AND f1.id <> $%d AND f2.id <> $%d", len(args), len(args))
	}
	args = append(args, q.Limit)
	limitPos := len(args)

	query := fmt.Sprintf(`
		SELECT f1.id, a1.airline_name, f1.flight_number,
		       ap1.iata_code, ap2.iata_code, c1.city_name, c2.city_name,
		       f1.departure_minute, f1.arrival_minute, f1.arrival_day_offset,
		       f1.duration_minutes, f1.base_price_cents,
		       COALESCE(fi1.available_seats, f1.total_seats),
		       f2.id, a2.airline_name, f2.flight_number,
		       ap2.iata_code, ap3.iata_code, c2.city_name, c3.city_name,
		       f2.departure_minute, f2.arrival_minute, f2.arrival_day_offset,
		       f2.duration_minutes, f2.base_price_cents,
		       COALESCE(fi2.available_seats, f2.total_seats)
		FROM flights f1
		JOIN flights f2 ON f2.source_airport_id = f1.destination_airport_id
		JOIN airlines a1 ON a1.id = f1.airline_id
		JOIN airlines a2 ON a2.id = f2.airline_id
		JOIN airports ap1 ON ap1.id = f1.source_airport_id
		JOIN airports ap2 ON ap2.id = f1.destination_airport_id
		JOIN airports ap3 ON ap3.id = f2.destination_airport_id
		JOIN cities c1 ON c1.id = ap1.city_id
		JOIN cities c2 ON c2.id = ap2.city_id
		JOIN cities c3 ON c3.id = ap3.city_id
		LEFT JOIN flight_instances fi1 ON fi1.flight_id = f1.id AND fi1.flight_date = $1
		LEFT JOIN flight_instances fi2 ON fi2.flight_id = f2.id AND fi2.flight_date = $1
		WHERE f1.source_airport_id IN (%s)
		  AND f2.destination_airport_id IN (%s)
		  AND NOT f1.is_deleted
		  AND NOT f2.is_deleted
		  AND (fi1.flight_id IS NULL OR NOT fi1.is_deleted)
		  AND (fi2.flight_id IS NULL OR NOT fi2.is_deleted)
		  AND f1.departure_minute >= $%d
		  AND COALESCE(fi1.available_seats, f1.total_seats) >= $%d
		  AND COALESCE(fi2.available_seats, f2.total_seats) >= $%d
		  %s
		ORDER BY f1.base_price_cents + f2.base_price_cents ASC,
		         f1.duration_minutes + f2.duration_minutes ASC
		LIMIT $%d`,
		srcShape, dstShape, minPos, seatsPos, seatsPos, exclude, limitPos)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("connecting search: %w", err)
	}
	defer rows.Close()

	date := domain.DateOf(q.TravelDate)
	results := make([]domain.Itinerary, 0)
	for rows.Next() {
		var leg1, leg2 domain.Leg
		var dep1, arr1, off1, dep2, arr2, off2 int
		if err := rows.Scan(
			&leg1.FlightID, &leg1.AirlineName, &leg1.FlightNumber,
			&leg1.SourceAirport, &leg1.DestinationAirport, &leg1.SourceCity, &leg1.DestinationCity,
			&dep1, &arr1, &off1, &leg1.DurationMinutes, &leg1.BasePriceCents, &leg1.AvailableSeats,
			&leg2.FlightID, &leg2.AirlineName, &leg2.FlightNumber,
			&leg2.SourceAirport, &leg2.DestinationAirport, &leg2.SourceCity, &leg2.DestinationCity,
			&dep2, &arr2, &off2, &leg2.DurationMinutes, &leg2.BasePriceCents, &leg2.AvailableSeats,
		); err != nil {
			return nil, fmt.Errorf("scan connecting legs: %w", err)
		}
		leg1.DepartureAt = domain.CombineDateMinute(date, dep1, 0)
		leg1.ArrivalAt = domain.CombineDateMinute(date, arr1, off1)
		leg2.DepartureAt = domain.CombineDateMinute(date, dep2, 0)
		leg2.ArrivalAt = domain.CombineDateMinute(date, arr2, off2)
		results = append(results, domain.Itinerary{
			TotalDurationMinutes: leg1.DurationMinutes + leg2.DurationMinutes,
			TotalPriceCents:      leg1.BasePriceCents + leg2.BasePriceCents,
			Legs:                 []domain.Leg{leg1, leg2},
		})
	}
	return results, rows.Err()
}

var _ SearchRepository = (*PGSearchRepository)(nil)
