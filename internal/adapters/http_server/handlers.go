// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Svc *app.HotelService
	// Typed maps error kinds to 4xx/503. Off, every failure is a plain 500.
	Typed bool
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)

	routes := func(r chi.Router) {
		r.Get("/", h.listHotels)
		r.Post("/", h.addHotel)
		r.Put("/{id}", h.updateHotel)
		r.Delete("/{id}", h.deleteHotel)
		r.Get("/average-price", h.averagePrice)
		r.Get("/search", h.searchHotels)
		r.Get("/union", h.unionHotels)
		r.Get("/intersect", h.intersectHotels)
		r.Get("/popular-locations", h.popularLocations)
		r.Get("/frequent-hotels", h.frequentHotels)
		r.Post("/book", h.bookHotel)
	}
	s.mux.Route("/hotels", routes)
	s.mux.Route("/api/hotels", routes) // legacy prefix used by the web client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// statusFor maps an error kind when typed errors are enabled.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrInvalid:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	case domain.ErrUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail logs err once and answers with the generic error body.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	if h.Typed {
		status = statusFor(err)
	}
	kind := domain.KindLabel(domain.KindOf(err))
	noteFailure(r.Context(), op, kind)
	log.Error().
		Err(err).
		Str("route", routePattern(r)).
		Str("op", op).
		Str("kind", kind).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Msg("operation failed")
	writeJSON(w, status, errorBody{Error: http.StatusText(status)})
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalid, fmt.Sprintf(format, args...))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return invalid("decode body: %v", err)
	}
	return nil
}

func hotelID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalid("id %q is not an integer", raw)
	}
	return id, nil
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Ready(r.Context()); err != nil {
		log.Warn().Err(err).Msg("readiness check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListHotels(r.Context())
	if err != nil {
		h.fail(w, r, "ListHotels", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) addHotel(w http.ResponseWriter, r *http.Request) {
	var f domain.HotelFields
	if err := decode(w, r, &f); err != nil {
		h.fail(w, r, "AddHotel", err)
		return
	}
	out, err := h.Svc.AddHotel(r.Context(), f)
	if err != nil {
		h.fail(w, r, "AddHotel", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := hotelID(r)
	if err != nil {
		h.fail(w, r, "UpdateHotel", err)
		return
	}
	var f domain.HotelFields
	if err := decode(w, r, &f); err != nil {
		h.fail(w, r, "UpdateHotel", err)
		return
	}
	out, err := h.Svc.UpdateHotel(r.Context(), id, f)
	if err != nil {
		h.fail(w, r, "UpdateHotel", err)
		return
	}
	if out == nil && h.Typed {
		h.fail(w, r, "UpdateHotel", fmt.Errorf("hotel %d: %w", id, domain.ErrNotFound))
		return
	}
	// compat: an absent id answers 200 with a null body
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := hotelID(r)
	if err != nil {
		h.fail(w, r, "DeleteHotel", err)
		return
	}
	if err := h.Svc.DeleteHotel(r.Context(), id); err != nil {
		h.fail(w, r, "DeleteHotel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) averagePrice(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.AveragePrice(r.Context())
	if err != nil {
		h.fail(w, r, "AveragePrice", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) searchHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.SearchByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.fail(w, r, "SearchByName", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) unionHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.UnionByLocation(r.Context())
	if err != nil {
		h.fail(w, r, "UnionByLocation", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) intersectHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.IntersectLocationPrice(r.Context())
	if err != nil {
		h.fail(w, r, "IntersectLocationPrice", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) popularLocations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.PopularLocations(r.Context())
	if err != nil {
		h.fail(w, r, "PopularLocations", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) frequentHotels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.FrequentHotels(r.Context())
	if err != nil {
		h.fail(w, r, "FrequentHotels", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) bookHotel(w http.ResponseWriter, r *http.Request) {
	var b domain.Booking
	if err := decode(w, r, &b); err != nil {
		h.fail(w, r, "BookHotel", err)
		return
	}
	if err := h.Svc.BookHotel(r.Context(), b); err != nil {
		h.fail(w, r, "BookHotel", err)
		return
	}
	writeJSON(w, http.StatusCreated, messageBody{Message: "Hotel booked successfully"})
}
