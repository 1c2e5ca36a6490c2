package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/domain"
)

// seedFile is the on-disk fixture. Bookings point at hotels by position.
type seedFile struct {
	Hotels   []domain.HotelFields `json:"hotels"`
	Bookings []seedBooking        `json:"bookings"`
}

type seedBooking struct {
	HotelIndex int    `json:"hotel_index"`
	GuestName  string `json:"guest_name"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

type hotelAPI interface {
	AddHotel(ctx context.Context, f domain.HotelFields) (domain.Hotel, error)
	BookHotel(ctx context.Context, b domain.Booking) error
}

type result struct {
	hotelsOK, hotelsFailed     int
	bookingsOK, bookingsFailed int
}

func loadSeed(path string) (seedFile, error) {
	var s seedFile
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, bk := range s.Bookings {
		if bk.HotelIndex < 0 || bk.HotelIndex >= len(s.Hotels) {
			return s, fmt.Errorf("booking %d: hotel_index %d out of range", i, bk.HotelIndex)
		}
	}
	return s, nil
}

// run creates every hotel, then books against the ids the API assigned.
// At most workers calls are in flight.
func run(ctx context.Context, api hotelAPI, s seedFile, workers int) result {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res result
	)
	ids := make([]int64, len(s.Hotels))

	for i, f := range s.Hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("seeding interrupted")
			break
		}
		wg.Add(1)
		go func(i int, f domain.HotelFields) {
			defer wg.Done()
			defer sem.Release(1)

			h, err := api.AddHotel(ctx, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.hotelsFailed++
				log.Warn().Int("index", i).Err(err).Msg("add hotel failed")
				return
			}
			ids[i] = h.ID
			res.hotelsOK++
		}(i, f)
	}
	wg.Wait()
	res.hotelsFailed += len(s.Hotels) - res.hotelsOK - res.hotelsFailed

	for _, bk := range s.Bookings {
		id := ids[bk.HotelIndex]
		if id == 0 {
			res.bookingsFailed++
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("seeding interrupted")
			break
		}
		wg.Add(1)
		go func(b domain.Booking) {
			defer wg.Done()
			defer sem.Release(1)

			err := api.BookHotel(ctx, b)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.bookingsFailed++
				log.Warn().Int64("hotel_id", b.HotelID).Err(err).Msg("book hotel failed")
				return
			}
			res.bookingsOK++
		}(domain.Booking{HotelID: id, GuestName: bk.GuestName, CheckIn: bk.CheckIn, CheckOut: bk.CheckOut})
	}
	wg.Wait()
	res.bookingsFailed += len(s.Bookings) - res.bookingsOK - res.bookingsFailed
	return res
}
