package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hotel_booking/internal/adapters/observability"
)

// Deadline bounds the request context to d. A store call that outlives it
// fails as unavailable and is rendered by the handler in the active error mode.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// outcome is filled by the handler when a dispatch operation fails.
type outcome struct {
	op   string
	kind string
}

type outcomeKey struct{}

func noteFailure(ctx context.Context, op, kind string) {
	if o, ok := ctx.Value(outcomeKey{}).(*outcome); ok {
		o.op, o.kind = op, kind
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Observe records the request in the HTTP metrics and writes one access log
// line. Failed dispatch operations add their op and error kind to both.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			o := &outcome{}
			r = r.WithContext(context.WithValue(r.Context(), outcomeKey{}, o))

			next.ServeHTTP(sw, r)

			dur := time.Since(start)
			route := routePattern(r)
			status := sw.code()
			observability.ObserveHTTP(route, r.Method, status, dur)

			ev := l.Info()
			if o.op != "" {
				observability.ObserveHTTPFailure(o.op, o.kind)
				ev = l.Warn().Str("op", o.op).Str("kind", o.kind)
			}
			ev.Str("route", route).
				Str("method", r.Method).
				Int("status", status).
				Int("bytes", sw.bytes).
				Dur("duration", dur).
				Str("remote", clientIP(r)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("http_request")
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		return rc.RoutePattern()
	}
	return r.URL.Path
}

// clientIP trusts RemoteAddr; RealIP has already replaced it from the
// forwarding headers.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
