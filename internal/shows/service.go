package shows

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"quickshow/pkg/cache"
	"quickshow/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for show business logic
type Service interface {
	AddShow(ctx context.Context, req AddShowRequest) (*Show, error)
	GetShow(ctx context.Context, showID uuid.UUID) (*Show, error)
	ListShows(ctx context.Context) ([]Show, error)

	// CheckSeats reports whether every requested seat is free. Fails
	// closed: an unloadable show reads as unavailable. The result is
	// advisory only; occupancy is granted at payment confirmation.
	CheckSeats(ctx context.Context, showID uuid.UUID, seats []string) (bool, error)

	// OccupiedSeatLabels lists the occupied seat labels for a show,
	// served cache-aside from redis.
	OccupiedSeatLabels(ctx context.Context, showID uuid.UUID) ([]string, error)

	// ReleaseSeats frees seat labels, for support resolution of bookings
	// that lost a seat race and were flagged for refund.
	ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error

	// InvalidateSeatCache drops the cached seat labels for a show. Called
	// after out-of-package writes to occupied_seats.
	InvalidateSeatCache(ctx context.Context, showID uuid.UUID)

	ShowPrice(ctx context.Context, showID uuid.UUID) (float64, error)
}

type service struct {
	repo         Repository
	cache        cache.Service
	seatCacheTTL time.Duration
	log          *logger.Logger
}

// NewService creates a new show service instance. The cache service may be
// nil, in which case seat reads go straight to the store.
func NewService(repo Repository, cacheService cache.Service, seatCacheTTL time.Duration) Service {
	return &service{
		repo:         repo,
		cache:        cacheService,
		seatCacheTTL: seatCacheTTL,
		log:          logger.GetDefault(),
	}
}

func seatCacheKey(showID uuid.UUID) string {
	return fmt.Sprintf("quickshow:seats:%s", showID)
}

func (s *service) AddShow(ctx context.Context, req AddShowRequest) (*Show, error) {
	show := &Show{
		MovieTitle:    req.MovieTitle,
		ShowDateTime:  req.ShowDateTime,
		ShowPrice:     req.ShowPrice,
		City:          req.City,
		Theater:       req.Theater,
		Screen:        req.Screen,
		OccupiedSeats: SeatMap{},
	}
	if err := s.repo.Create(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}
	return show, nil
}

func (s *service) GetShow(ctx context.Context, showID uuid.UUID) (*Show, error) {
	return s.repo.GetByID(ctx, showID)
}

func (s *service) ListShows(ctx context.Context) ([]Show, error) {
	return s.repo.List(ctx)
}

func (s *service) CheckSeats(ctx context.Context, showID uuid.UUID, seats []string) (bool, error) {
	show, err := s.repo.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrNotFound
		}
		// Fail closed on any load error
		return false, err
	}

	occupied := show.OccupiedSeats
	if occupied == nil {
		occupied = SeatMap{}
	}

	for _, seat := range seats {
		if _, taken := occupied[seat]; taken {
			return false, nil
		}
	}
	return true, nil
}

func (s *service) OccupiedSeatLabels(ctx context.Context, showID uuid.UUID) ([]string, error) {
	fetch := func() ([]string, error) {
		show, err := s.repo.GetByID(ctx, showID)
		if err != nil {
			return nil, err
		}
		labels := show.OccupiedSeats.Labels()
		sort.Strings(labels)
		return labels, nil
	}

	if s.cache == nil {
		return fetch()
	}

	var labels []string
	err := s.cache.GetOrSet(ctx, seatCacheKey(showID), s.seatCacheTTL, func() (interface{}, error) {
		return fetch()
	}, &labels)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		// Cache trouble should not break seat reads
		return fetch()
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}

func (s *service) ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error {
	if err := s.repo.ReleaseSeats(ctx, showID, seats); err != nil {
		return err
	}

	s.InvalidateSeatCache(ctx, showID)
	return nil
}

func (s *service) InvalidateSeatCache(ctx context.Context, showID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, seatCacheKey(showID)); err != nil {
		s.log.Warn("failed to invalidate seat cache", "show_id", showID.String(), "error", err.Error())
	}
}

func (s *service) ShowPrice(ctx context.Context, showID uuid.UUID) (float64, error) {
	show, err := s.repo.GetByID(ctx, showID)
	if err != nil {
		return 0, err
	}
	return show.ShowPrice, nil
}
