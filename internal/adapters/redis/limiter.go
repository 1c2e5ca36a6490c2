package redisad

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills at ARGV[1] tokens/s up to ARGV[2], at time ARGV[3] (ms).
// Returns {allowed, wait_ms}.
var tokenBucket = redis.NewScript(`
local rate  = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now   = tonumber(ARGV[3])

local state  = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = burst
local ts     = now
if state[1] then
  tokens = tonumber(state[1])
  ts     = tonumber(state[2])
end

local elapsed = now - ts
if elapsed < 0 then elapsed = 0 end
tokens = math.min(burst, tokens + elapsed * rate / 1000)

local allowed = 0
local wait    = 0
if tokens >= 1 then
  tokens  = tokens - 1
  allowed = 1
else
  wait = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', tostring(now))
redis.call('PEXPIRE', KEYS[1], math.ceil(burst * 1000 / rate) + 1000)
return {allowed, wait}
`)

func NewClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// Limiter is a token bucket per key shared by every API replica.
type Limiter struct {
	c      redis.Scripter
	rps    int
	burst  int
	prefix string
	now    func() time.Time
}

func NewLimiter(c redis.Scripter, rps, burst int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst < rps {
		burst = rps
	}
	return &Limiter{c: c, rps: rps, burst: burst, prefix: "ratelimit:", now: time.Now}
}

func (l *Limiter) Name() string { return "redis" }

func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := tokenBucket.Run(ctx, l.c, []string{l.prefix + key},
		l.rps, l.burst, strconv.FormatInt(l.now().UnixMilli(), 10)).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("rate limit %s: unexpected reply %v", key, res)
	}
	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}
