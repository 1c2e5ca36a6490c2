package httpserver

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
)

// Limiter decides whether the client identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
	Name() string
}

// RateLimit rejects requests with 429 once a client's bucket is empty.
// Limiter errors let the request through.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait, err := l.Allow(r.Context(), "ip:"+clientIP(r))
			if err != nil {
				log.Warn().Err(err).Str("limiter", l.Name()).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				observability.ObserveRateLimited(l.Name())
				secs := int(math.Ceil(wait.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: http.StatusText(http.StatusTooManyRequests)})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LocalLimiter keeps one token bucket per key in process memory.
type LocalLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitor
	idleTTL   time.Duration
	lastSweep time.Time
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewLocalLimiter(rps, burst int) *LocalLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst < rps {
		burst = rps
	}
	return &LocalLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		visitors: map[string]*visitor{},
		idleTTL:  10 * time.Minute,
	}
}

func (l *LocalLimiter) Name() string { return "local" }

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.seen = now
	if now.Sub(l.lastSweep) > time.Minute {
		for k, vv := range l.visitors {
			if now.Sub(vv.seen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}
	l.mu.Unlock()

	res := v.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second, nil
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, d, nil
	}
	return true, 0, nil
}
