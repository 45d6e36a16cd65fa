package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DirectoryRepository interface {
	AirportIDsByCity(ctx context.Context, city string) ([]int64, error)
	FlightRoute(ctx context.Context, flightID int64) (sourceCity, destinationCity string, err error)
}

type PGDirectoryRepository struct {
	db *pgxpool.Pool
}

func NewDirectoryRepository(db *pgxpool.Pool) DirectoryRepository {
	return &PGDirectoryRepository{db: db}
}

// AirportIDsByCity returns the ids of all non-deleted airports belonging to
// a non-deleted city with exactly the given name. An empty result is not an
// error here; callers surface it as a not-found condition.
func (r *PGDirectoryRepository) AirportIDsByCity(ctx context.Context, city string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id
		FROM airports a
		JOIN cities c ON c.id = a.city_id
		WHERE c.city_name = $1 AND NOT c.is_deleted AND NOT a.is_deleted`, city)
	if err != nil {
		return nil, fmt.Errorf("airports by city: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan airport id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FlightRoute resolves the source and destination city names of a flight,
// regardless of the flight's soft-delete flag: cancellations need the route
// of a flight that may already be marked deleted.
func (r *PGDirectoryRepository) FlightRoute(ctx context.Context, flightID int64) (string, string, error) {
	row := r.db.QueryRow(ctx, `
		SELECT sc.city_name, dc.city_name
		FROM flights f
		JOIN airports src ON src.id = f.source_airport_id
		JOIN airports dst ON dst.id = f.destination_airport_id
		JOIN cities sc ON sc.id = src.city_id
		JOIN cities dc ON dc.id = dst.city_id
		WHERE f.id = $1`, flightID)

	var source, destination string
	if err := row.Scan(&source, &destination); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
		}
		return "", "", fmt.Errorf("flight route: %w", err)
	}
	return source, destination, nil
}

var _ DirectoryRepository = (*PGDirectoryRepository)(nil)
