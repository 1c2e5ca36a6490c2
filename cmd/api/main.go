package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_booking/internal/adapters/bookingevents"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage/sqlstore"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	dialect, err := sqlstore.DialectFor(cfg.DBDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("unsupported DB_DRIVER")
	}
	db, err := sqlstore.Open(ctx, dialect, cfg.DatabaseURL, sqlstore.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Str("driver", dialect.Name).Msg("database connection ok")
	if !dialect.UsesStoredProcedure() {
		log.Warn().Str("driver", dialect.Name).Msg("no book_hotel procedure; bookings are inserted directly")
	}

	// deps
	repo := sqlstore.New(db, dialect)

	var notifier domain.BookingNotifier
	var publisher *bookingevents.Publisher
	if cfg.AMQPURL != "" {
		publisher = bookingevents.NewPublisher(cfg.AMQPURL, cfg.BookingQueue)
		notifier = publisher
		log.Info().Str("queue", cfg.BookingQueue).Msg("booking events enabled")
	}
	svc := app.NewHotelService(repo, notifier, cfg.Query, cfg.QueryTimeout)

	var limiter server.Limiter
	if cfg.RateLimitEnabled {
		if cfg.RedisAddr != "" {
			rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			defer rc.Close()
			limiter = redisad.NewLimiter(rc, cfg.RateLimitRPS, cfg.RateLimitBurst)
		} else {
			limiter = server.NewLocalLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
		log.Info().Str("limiter", limiter.Name()).Int("rps", cfg.RateLimitRPS).Int("burst", cfg.RateLimitBurst).Msg("rate limiting enabled")
	}

	// http
	srv := server.New(server.Options{
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Limiter:        limiter,
	})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc, Typed: cfg.ErrorMode == shared.ErrorModeTyped})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	servers := []*http.Server{httpSrv}
	if ms := observability.Serve(cfg.MetricsAddr, reg); ms != nil {
		servers = append(servers, ms)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			log.Info().Str("addr", s.Addr).Msg("listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var firstErr error
		for _, s := range servers {
			if err := s.Shutdown(sctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})

	err = g.Wait()

	if publisher != nil {
		_ = publisher.Close()
	}
	if cerr := db.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("db close failed")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("bye")
}
