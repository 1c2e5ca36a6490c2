package app

import (
	"context"
	"time"

	"hotel_booking/internal/domain"
)

// HotelService is the dispatch layer: one method per use case, each a single
// store round trip under a fixed deadline. It holds no state between calls.
type HotelService struct {
	store    domain.HotelStore
	notifier domain.BookingNotifier // optional
	params   domain.QueryParams
	timeout  time.Duration
}

func NewHotelService(s domain.HotelStore, n domain.BookingNotifier, p domain.QueryParams, timeout time.Duration) *HotelService {
	p.UnionLocations = append([]string(nil), p.UnionLocations...)
	return &HotelService{store: s, notifier: n, params: p, timeout: timeout}
}

func (s *HotelService) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *HotelService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.ListHotels(ctx)
}

func (s *HotelService) AveragePrice(ctx context.Context) (domain.AveragePrice, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.AveragePrice(ctx)
}

func (s *HotelService) SearchByName(ctx context.Context, substring string) ([]domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.SearchByName(ctx, substring)
}

func (s *HotelService) UnionByLocation(ctx context.Context) ([]domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.UnionByLocation(ctx, s.params.UnionLocations)
}

func (s *HotelService) IntersectLocationPrice(ctx context.Context) ([]domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.IntersectLocationPrice(ctx, s.params.IntersectLocation, s.params.IntersectMaxPrice)
}

func (s *HotelService) PopularLocations(ctx context.Context) ([]domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.PopularLocations(ctx, s.params.PopularMinBookings)
}

func (s *HotelService) FrequentHotels(ctx context.Context) ([]domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.FrequentHotels(ctx)
}

// Ready reports whether the store answers a ping.
func (s *HotelService) Ready(ctx context.Context) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.Ping(ctx)
}
