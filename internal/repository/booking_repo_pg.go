package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error
	GetDetail(ctx context.Context, id int64) (*domain.BookingDetail, error)
	CancelFlightOccurrence(ctx context.Context, flightID int64, date time.Time) (*domain.FlightCancellation, error)
	CancelBookings(ctx context.Context, ids []int64) ([]domain.AffectedBooking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Create books seats atomically: it locks the flight instance for the travel
// date (creating it seeded with total capacity if absent), validates
// availability, inserts the booking and its passengers and debits the seats.
// Any failure rolls the whole unit back. The booking's id, booking date,
// status and total price are filled in on success.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, passengers []domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var basePriceCents int64
	err = tx.QueryRow(ctx,
		`SELECT base_price_cents FROM flights WHERE id = $1 AND NOT is_deleted`,
		booking.FlightID,
	).Scan(&basePriceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("flight %d: %w", booking.FlightID, domain.ErrNotFound)
		}
		return fmt.Errorf("get flight: %w", err)
	}

	date := domain.DateOf(booking.TravelDate)
	inst, err := ensureInstanceTx(ctx, tx, booking.FlightID, date)
	if err != nil {
		return err
	}
	if inst.IsDeleted {
		return fmt.Errorf("flight %d on %s is cancelled: %w",
			booking.FlightID, date.Format("2006-01-02"), domain.ErrNotFound)
	}

	seats := len(passengers)
	if inst.AvailableSeats < seats {
		return &domain.CapacityError{Requested: seats, Available: inst.AvailableSeats}
	}

	booking.TravelDate = date
	booking.Status = domain.BookingStatusConfirmed
	booking.TotalPriceCents = basePriceCents * int64(seats)

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (reference, flight_id, user_id, booking_date, travel_date, status, total_price_cents)
		VALUES ($1, $2, $3, now(), $4, $5, $6)
		RETURNING id, booking_date`,
		booking.Reference, booking.FlightID, booking.UserID, booking.TravelDate, booking.Status, booking.TotalPriceCents,
	).Scan(&booking.ID, &booking.BookingDate)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	for i := range passengers {
		passengers[i].BookingID = booking.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO passengers (booking_id, passenger_name, age, gender, passport_no)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			passengers[i].BookingID, passengers[i].Name, passengers[i].Age, passengers[i].Gender, passengers[i].PassportNo,
		).Scan(&passengers[i].ID)
		if err != nil {
			return fmt.Errorf("insert passenger: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE flight_instances SET available_seats = available_seats - $1
		WHERE flight_id = $2 AND flight_date = $3`,
		seats, booking.FlightID, date)
	if err != nil {
		return fmt.Errorf("debit seats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetDetail returns the booking joined with its flight, airline, airport and
// city reference data plus the passenger manifest.
func (r *PGBookingRepository) GetDetail(ctx context.Context, id int64) (*domain.BookingDetail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT b.id, b.reference, b.flight_id, b.user_id, b.booking_date, b.travel_date, b.status, b.total_price_cents,
		       f.flight_number, a.airline_name,
		       src.iata_code, src.airport_name, sc.city_name,
		       dst.iata_code, dst.airport_name, dc.city_name,
		       f.departure_minute, f.arrival_minute, f.arrival_day_offset
		FROM bookings b
		JOIN flights f ON f.id = b.flight_id
		JOIN airlines a ON a.id = f.airline_id
		JOIN airports src ON src.id = f.source_airport_id
		JOIN airports dst ON dst.id = f.destination_airport_id
		JOIN cities sc ON sc.id = src.city_id
		JOIN cities dc ON dc.id = dst.city_id
		WHERE b.id = $1`, id)

	var d domain.BookingDetail
	var depMin, arrMin, dayOffset int
	err := row.Scan(&d.ID, &d.Reference, &d.FlightID, &d.UserID, &d.BookingDate, &d.TravelDate, &d.Status, &d.TotalPriceCents,
		&d.FlightNumber, &d.AirlineName,
		&d.SourceAirportCode, &d.SourceAirportName, &d.SourceCity,
		&d.DestinationAirportCode, &d.DestinationAirportName, &d.DestinationCity,
		&depMin, &arrMin, &dayOffset)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	d.DepartureAt = domain.CombineDateMinute(d.TravelDate, depMin, 0)
	d.ArrivalAt = domain.CombineDateMinute(d.TravelDate, arrMin, dayOffset)

	rows, err := r.db.Query(ctx, `
		SELECT id, booking_id, passenger_name, age, gender, passport_no
		FROM passengers WHERE booking_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get passengers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Age, &p.Gender, &p.PassportNo); err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		d.Passengers = append(d.Passengers, p)
	}
	return &d, rows.Err()
}

// CancelFlightOccurrence cancels one flight's occurrence on one date:
// every non-cancelled booking for (flight, date) moves to
// cancelled_by_airline, and the instance is marked deleted with zero seats
// (created first if it never existed). All of it commits as one unit;
// bookings on other dates or flights are untouched. Returns the affected
// bookings with their passenger manifests.
func (r *PGBookingRepository) CancelFlightOccurrence(ctx context.Context, flightID int64, date time.Time) (*domain.FlightCancellation, error) {
	date = domain.DateOf(date)

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var active bool
	err = tx.QueryRow(ctx, `SELECT NOT is_deleted FROM flights WHERE id = $1`, flightID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	if !active {
		return nil, fmt.Errorf("flight %d is not active: %w", flightID, domain.ErrNotFound)
	}

	inst, err := ensureInstanceTx(ctx, tx, flightID, date)
	if err != nil {
		return nil, err
	}
	if inst.IsDeleted {
		return nil, fmt.Errorf("flight %d on %s is already cancelled: %w",
			flightID, date.Format("2006-01-02"), domain.ErrNotFound)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, reference, flight_id, user_id, booking_date, travel_date, status, total_price_cents
		FROM bookings
		WHERE flight_id = $1 AND travel_date = $2 AND status = $3
		ORDER BY id
		FOR UPDATE`,
		flightID, date, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("collect bookings: %w", err)
	}

	cancellation := &domain.FlightCancellation{FlightID: flightID, FlightDate: date}
	bookingIDs := make([]int64, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.FlightID, &b.UserID, &b.BookingDate, &b.TravelDate, &b.Status, &b.TotalPriceCents); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		cancellation.Affected = append(cancellation.Affected, domain.AffectedBooking{Booking: b})
		bookingIDs = append(bookingIDs, b.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect bookings: %w", err)
	}

	if len(bookingIDs) > 0 {
		byBooking, err := passengersForBookings(ctx, tx, bookingIDs)
		if err != nil {
			return nil, err
		}
		for i := range cancellation.Affected {
			cancellation.Affected[i].Passengers = byBooking[cancellation.Affected[i].ID]
		}

		_, err = tx.Exec(ctx,
			`UPDATE bookings SET status = $1 WHERE id = ANY($2)`,
			domain.BookingStatusCancelledByAirline, bookingIDs)
		if err != nil {
			return nil, fmt.Errorf("cancel bookings: %w", err)
		}
		for i := range cancellation.Affected {
			cancellation.Affected[i].Status = domain.BookingStatusCancelledByAirline
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE flight_instances SET is_deleted = true, available_seats = 0
		WHERE flight_id = $1 AND flight_date = $2`,
		flightID, date)
	if err != nil {
		return nil, fmt.Errorf("zero instance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cancellation, nil
}

// CancelBookings transitions the given bookings to cancelled_by_user and
// credits their seats back to the matching flight instances. Validation is
// all-or-nothing: unknown ids and already-cancelled ids each fail the whole
// batch before anything is written. Returns the cancelled bookings with
// their passenger manifests.
func (r *PGBookingRepository) CancelBookings(ctx context.Context, ids []int64) ([]domain.AffectedBooking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, reference, flight_id, user_id, booking_date, travel_date, status, total_price_cents
		FROM bookings
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}

	found := make(map[int64]bool, len(ids))
	bookings := make([]domain.Booking, 0, len(ids))
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.FlightID, &b.UserID, &b.BookingDate, &b.TravelDate, &b.Status, &b.TotalPriceCents); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		found[b.ID] = true
		bookings = append(bookings, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingBookingsError{BookingIDs: missing}
	}

	var cancelled []int64
	for _, b := range bookings {
		if b.Status.Cancelled() {
			cancelled = append(cancelled, b.ID)
		}
	}
	if len(cancelled) > 0 {
		return nil, &domain.InvalidStateError{BookingIDs: cancelled}
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET status = $1 WHERE id = ANY($2)`,
		domain.BookingStatusCancelledByUser, ids)
	if err != nil {
		return nil, fmt.Errorf("cancel bookings: %w", err)
	}

	byBooking, err := passengersForBookings(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	// One release per distinct (flight, date), summed across the batch.
	type key struct {
		flightID int64
		date     time.Time
	}
	releases := make(map[key]int)
	for _, b := range bookings {
		releases[key{b.FlightID, domain.DateOf(b.TravelDate)}] += len(byBooking[b.ID])
	}

	for k, seats := range releases {
		if seats == 0 {
			continue
		}
		if _, err := ensureInstanceTx(ctx, tx, k.flightID, k.date); err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, `
			UPDATE flight_instances SET available_seats = available_seats + $1
			WHERE flight_id = $2 AND flight_date = $3`,
			seats, k.flightID, k.date)
		if err != nil {
			return nil, fmt.Errorf("credit seats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	affected := make([]domain.AffectedBooking, 0, len(bookings))
	for _, b := range bookings {
		b.Status = domain.BookingStatusCancelledByUser
		affected = append(affected, domain.AffectedBooking{Booking: b, Passengers: byBooking[b.ID]})
	}
	return affected, nil
}

// passengersForBookings loads the passenger manifests of the given bookings,
// keyed by booking id, inside the caller's transaction.
func passengersForBookings(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64][]domain.Passenger, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, booking_id, passenger_name, age, gender, passport_no
		FROM passengers WHERE booking_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("collect passengers: %w", err)
	}
	defer rows.Close()

	byBooking := make(map[int64][]domain.Passenger)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Age, &p.Gender, &p.PassportNo); err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		byBooking[p.BookingID] = append(byBooking[p.BookingID], p)
	}
	return byBooking, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
