package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	Limiter        Limiter // nil disables rate limiting
}

func New(o Options) *Server {
	m := chi.NewRouter()

	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 15 * time.Second
	}

	// All middlewares go here (before any routes are added)
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(Observe(log.Logger))
	m.Use(chimw.Recoverer)
	m.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Accept"},
		MaxAge:         300,
	}))
	if o.Limiter != nil {
		m.Use(RateLimit(o.Limiter))
	}
	m.Use(Deadline(o.RequestTimeout))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
