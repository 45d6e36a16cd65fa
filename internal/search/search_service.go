package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
)

type UseCase interface {
	Direct(ctx context.Context, req Request) ([]domain.Itinerary, error)
	Connecting(ctx context.Context, req Request) ([]domain.Itinerary, error)
	All(ctx context.Context, req Request) ([]domain.Itinerary, error)
	Schedules(ctx context.Context) ([]domain.Schedule, error)
}

type Cache interface {
	GetSchedules(ctx context.Context) ([]domain.Schedule, error)
	SetSchedules(ctx context.Context, schedules []domain.Schedule) error
}

// Request is an itinerary search by city names. Departure carries both the
// travel date and the minimum departure time-of-day. ExcludeFlightID, when
// non-zero, keeps one flight out of every leg (used for cancellation
// alternatives).
type Request struct {
	SourceCity      string
	DestinationCity string
	Departure       time.Time
	Seats           int
	Limit           int
	ExcludeFlightID int64
}

type Service struct {
	directory repository.DirectoryRepository
	flights   repository.SearchRepository
	schedules repository.ScheduleRepository
	cache     Cache
}

func NewService(directory repository.DirectoryRepository, flights repository.SearchRepository, schedules repository.ScheduleRepository, cache Cache) *Service {
	return &Service{directory: directory, flights: flights, schedules: schedules, cache: cache}
}

func (s *Service) validate(req Request) error {
	if req.Seats <= 0 {
		return errors.New("seats required must be positive")
	}
	if req.Limit <= 0 {
		return errors.New("limit must be positive")
	}
	return nil
}

// resolve maps both city names to airport-id sets; an unknown city or a city
// with no active airports is a not-found condition for the caller.
func (s *Service) resolve(ctx context.Context, req Request) (src, dst []int64, err error) {
	src, err = s.directory.AirportIDsByCity(ctx, req.SourceCity)
	if err != nil {
		return nil, nil, err
	}
	if len(src) == 0 {
		return nil, nil, fmt.Errorf("no airports found for source city %q: %w", req.SourceCity, domain.ErrNotFound)
	}
	dst, err = s.directory.AirportIDsByCity(ctx, req.DestinationCity)
	if err != nil {
		return nil, nil, err
	}
	if len(dst) == 0 {
		return nil, nil, fmt.Errorf("no airports found for destination city %q: %w", req.DestinationCity, domain.ErrNotFound)
	}
	return src, dst, nil
}

func (s *Service) query(req Request, src, dst []int64, date time.Time, limit int) repository.SearchQuery {
	return repository.SearchQuery{
		SourceAirports:      src,
		DestinationAirports: dst,
		TravelDate:          date,
		MinDepartureMinute:  domain.MinuteOfDay(req.Departure),
		Seats:               req.Seats,
		Limit:               limit,
		ExcludeFlightID:     req.ExcludeFlightID,
	}
}

// Direct returns single-leg itineraries for the requested date only.
func (s *Service) Direct(ctx context.Context, req Request) ([]domain.Itinerary, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	src, dst, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.flights.Direct(ctx, s.query(req, src, dst, domain.DateOf(req.Departure), req.Limit))
}

// Connecting returns one-layover itineraries for the requested date only.
func (s *Service) Connecting(ctx context.Context, req Request) ([]domain.Itinerary, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	src, dst, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.flights.Connecting(ctx, s.query(req, src, dst, domain.DateOf(req.Departure), req.Limit))
}

// All merges direct and connecting results: direct flights for the requested
// date first, any shortfall filled from connecting flights, and if the limit
// is still unmet the two stages repeat once for the following calendar day.
// Stage order is preserved; the list is never globally re-sorted.
func (s *Service) All(ctx context.Context, req Request) ([]domain.Itinerary, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	src, dst, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Itinerary, 0, req.Limit)
	for day := 0; day <= 1 && len(out) < req.Limit; day++ {
		date := domain.DateOf(req.Departure).AddDate(0, 0, day)

		direct, err := s.flights.Direct(ctx, s.query(req, src, dst, date, req.Limit-len(out)))
		if err != nil {
			return nil, err
		}
		out = append(out, direct...)
		if len(out) >= req.Limit {
			break
		}

		connecting, err := s.flights.Connecting(ctx, s.query(req, src, dst, date, req.Limit-len(out)))
		if err != nil {
			return nil, err
		}
		out = append(out, connecting...)
	}

	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

// Schedules lists all active flights, served from the cache when warm.
func (s *Service) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSchedules(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	schedules, err := s.schedules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSchedules(ctx, schedules)
	}
	return schedules, nil
}

var _ UseCase = (*Service)(nil)
