package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/hotelsapi"
	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/shared"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("base", cfg.APIBaseURL).
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Int("rps", cfg.SeedRPS).
		Msg("seeder starting")

	seed, err := loadSeed(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load seed file failed")
	}

	client, err := hotelsapi.New(cfg.APIBaseURL, cfg.SeedRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize API client")
	}

	res := run(ctx, client, seed, cfg.SeedWorkers)
	log.Info().
		Int("hotels_ok", res.hotelsOK).
		Int("hotels_failed", res.hotelsFailed).
		Int("bookings_ok", res.bookingsOK).
		Int("bookings_failed", res.bookingsFailed).
		Msg("seeding completed")
	if res.hotelsFailed+res.bookingsFailed > 0 {
		os.Exit(1)
	}
}
