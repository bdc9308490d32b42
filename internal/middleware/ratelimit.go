package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/thai-itinerary/internal/config"
)

// bucket decides whether one more request under key may proceed.
type bucket interface {
    take(ctx context.Context, key string, now time.Time) (allowed bool, remaining int64, retry time.Duration, err error)
}

// NewTokenBucket limits requests per key (see buildRateKey).  Buckets live
// in Redis so every replica shares them; without Redis each process keeps
// its own buckets in memory.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return passThrough
    }
    var b bucket
    if rdb != nil {
        b = &redisBucket{cfg: cfg, rdb: rdb}
    } else {
        b = newLocalBucket(cfg)
    }
    return rateLimit(cfg, b)
}

func rateLimit(cfg config.RateLimitConfig, b bucket) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            allowed, remaining, retry, err := b.take(c.Request().Context(), key, time.Now())
            if err != nil {
                // Fail open; a Redis outage must not take the API down.
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] error for key=%s: %v", key, err)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !allowed {
                secs := int(math.Ceil(retry.Seconds()))
                if secs < 1 {
                    secs = 1
                }
                h.Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])
    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + intervals * refill_tokens)
            last_refill = last_refill + intervals * interval_ms
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)
    return { allowed, tokens, retry_after_ms }
`)

type redisBucket struct {
    cfg config.RateLimitConfig
    rdb *redis.Client
}

func (b *redisBucket) take(ctx context.Context, key string, now time.Time) (bool, int64, time.Duration, error) {
    vals, err := limiterScript.Run(ctx, b.rdb, []string{key},
        now.UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL/time.Second),
    ).Result()
    if err != nil {
        return false, 0, 0, err
    }
    arr, ok := vals.([]any)
    if !ok || len(arr) != 3 {
        return false, 0, 0, fmt.Errorf("unexpected script result %#v", vals)
    }
    return asInt64(arr[0]) == 1, asInt64(arr[1]), time.Duration(asInt64(arr[2])) * time.Millisecond, nil
}

func asInt64(v any) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// localBucket is the in-process fallback built on x/time/rate.  Idle
// limiters are swept once per TTL.
type localBucket struct {
    mu        sync.Mutex
    every     rate.Limit
    burst     int
    ttl       time.Duration
    entries   map[string]*localEntry
    lastSweep time.Time
}

type localEntry struct {
    lim      *rate.Limiter
    lastSeen time.Time
}

func newLocalBucket(cfg config.RateLimitConfig) *localBucket {
    per := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
    return &localBucket{
        every:   rate.Every(per),
        burst:   cfg.Capacity,
        ttl:     cfg.TTL,
        entries: make(map[string]*localEntry),
    }
}

func (b *localBucket) take(_ context.Context, key string, now time.Time) (bool, int64, time.Duration, error) {
    b.mu.Lock()
    defer b.mu.Unlock()

    if now.Sub(b.lastSweep) > b.ttl {
        for k, e := range b.entries {
            if now.Sub(e.lastSeen) > b.ttl {
                delete(b.entries, k)
            }
        }
        b.lastSweep = now
    }

    e, ok := b.entries[key]
    if !ok {
        e = &localEntry{lim: rate.NewLimiter(b.every, b.burst)}
        b.entries[key] = e
    }
    e.lastSeen = now

    r := e.lim.ReserveN(now, 1)
    if !r.OK() {
        return false, 0, b.ttl, nil
    }
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return false, 0, delay, nil
    }
    remaining := int64(e.lim.TokensAt(now))
    if remaining < 0 {
        remaining = 0
    }
    return true, remaining, 0, nil
}

// buildRateKey joins Prefix with the request parts listed in KeyParts.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    for _, p := range cfg.KeyParts {
        switch p {
        case "ip":
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            parts = append(parts, "ip", ip)
        case "user":
            parts = append(parts, "user", principal(c))
        case "route":
            parts = append(parts, "route", c.Request().Method+" "+c.Path())
        }
    }
    return strings.Join(parts, ":")
}
