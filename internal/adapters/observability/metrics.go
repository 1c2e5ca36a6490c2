package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotels", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	HTTPFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "http_operation_failures_total", Help: "Failed dispatch operations by error kind."},
		[]string{"op", "kind"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotels", Name: "store_query_duration_seconds",
			Help:    "Store statement duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "store_query_errors_total", Help: "Failed store statements."},
		[]string{"op", "kind"}, // kind: not_found|conflict|unavailable|invalid|internal
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "rate_limited_total", Help: "Requests rejected by the rate limiter."},
		[]string{"limiter"}, // limiter: redis|local
	)
	BookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotels", Name: "booking_events_total", Help: "Booking event publish outcomes."},
		[]string{"outcome"}, // outcome: published|failed
	)
)

// Serve exposes reg on a dedicated listener. No-op when addr is empty.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("metrics server configured")
	return srv
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, HTTPFailures, StoreLatency, StoreErrors, RateLimited, BookingEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveHTTPFailure(op, kind string) { HTTPFailures.WithLabelValues(op, kind).Inc() }

// ObserveQuery records one store statement. kind is empty on success.
func ObserveQuery(op, kind string, dur time.Duration) {
	StoreLatency.WithLabelValues(op).Observe(dur.Seconds())
	if kind != "" {
		StoreErrors.WithLabelValues(op, kind).Inc()
	}
}

func ObserveRateLimited(limiter string) { RateLimited.WithLabelValues(limiter).Inc() }

func ObserveBookingEvent(outcome string) { BookingEvents.WithLabelValues(outcome).Inc() }
