// internal/adapters/hotelsapi/client.go
package hotelsapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_booking/internal/domain"
)

const maxAttempts = 4

// Client talks to the hotel booking HTTP API.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/") + "/hotels",
		hc:   &http.Client{Timeout: 10 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// APIError is a non-2xx answer. Message is the server's "error" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hotels api: status %d", e.Status)
	}
	return fmt.Sprintf("hotels api: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

// ---- Public API ----

func (c *Client) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.do(ctx, http.MethodGet, "/", nil, &out)
}

func (c *Client) AddHotel(ctx context.Context, f domain.HotelFields) (domain.Hotel, error) {
	var out domain.Hotel
	return out, c.do(ctx, http.MethodPost, "/", f, &out)
}

// UpdateHotel returns nil when the server reports no such hotel.
func (c *Client) UpdateHotel(ctx context.Context, id int64, f domain.HotelFields) (*domain.Hotel, error) {
	var out *domain.Hotel
	err := c.do(ctx, http.MethodPut, "/"+strconv.FormatInt(id, 10), f, &out)
	if StatusOf(err) == http.StatusNotFound {
		return nil, nil
	}
	return out, err
}

func (c *Client) DeleteHotel(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) AveragePrice(ctx context.Context) (domain.AveragePrice, error) {
	var out domain.AveragePrice
	return out, c.do(ctx, http.MethodGet, "/average-price", nil, &out)
}

func (c *Client) SearchByName(ctx context.Context, name string) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.do(ctx, http.MethodGet, "/search?name="+url.QueryEscape(name), nil, &out)
}

func (c *Client) UnionByLocation(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.do(ctx, http.MethodGet, "/union", nil, &out)
}

func (c *Client) IntersectLocationPrice(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.do(ctx, http.MethodGet, "/intersect", nil, &out)
}

func (c *Client) PopularLocations(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.do(ctx, http.MethodGet, "/popular-locations", nil, &out)
}

func (c *Client) FrequentHotels(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.do(ctx, http.MethodGet, "/frequent-hotels", nil, &out)
}

func (c *Client) BookHotel(ctx context.Context, b domain.Booking) error {
	return c.do(ctx, http.MethodPost, "/book", b, nil)
}

// ---- Internals ----

// retryable reports whether repeating method cannot create a second record.
func retryable(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// do sends one API call with client-side rate limiting and JSON in/out.
// Idempotent methods retry on 429 and transient 5xx, honoring Retry-After.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	attempts := 1
	if retryable(method) {
		attempts = maxAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}

		// build a fresh request each attempt
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("User-Agent", "hotel-booking-client/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch {
		case resp.StatusCode == http.StatusNoContent:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("decode %s %s: %w", method, path, err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp)
			lastErr = readAPIError(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < attempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return readAPIError(resp)
		}
	}
	return lastErr
}

// readAPIError consumes and closes resp.Body.
func readAPIError(resp *http.Response) error {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff is 100ms doubling per attempt, plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
