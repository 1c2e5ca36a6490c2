package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

const notifyTimeout = 5 * time.Second

func (s *HotelService) AddHotel(ctx context.Context, f domain.HotelFields) (domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.AddHotel(ctx, f)
}

// UpdateHotel returns nil without error when the id does not exist.
func (s *HotelService) UpdateHotel(ctx context.Context, id int64, f domain.HotelFields) (*domain.Hotel, error) {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.UpdateHotel(ctx, id, f)
}

// DeleteHotel succeeds whether or not the id exists.
func (s *HotelService) DeleteHotel(ctx context.Context, id int64) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	return s.store.DeleteHotel(ctx, id)
}

// BookHotel hands the booking to the store procedure. The booking event is
// best-effort: a publish failure never fails the booking.
func (s *HotelService) BookHotel(ctx context.Context, b domain.Booking) error {
	sctx, cancel := s.withDeadline(ctx)
	err := s.store.BookHotel(sctx, b)
	cancel()
	if err != nil {
		return err
	}

	if s.notifier != nil {
		nctx, ncancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer ncancel()
		if nerr := s.notifier.BookingCreated(nctx, b); nerr != nil {
			log.Warn().Err(nerr).Int64("hotel_id", b.HotelID).Msg("booking event not published")
		}
	}
	return nil
}
