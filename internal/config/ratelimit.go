package config

import "time"

// RateLimitConfig drives both the Redis token bucket and the in-process
// fallback limiter used when Redis is unavailable.  A bucket holds
// Capacity tokens and regains RefillTokens every RefillInterval.
//
// KeyParts selects what a bucket is keyed on, drawn from "ip", "user"
// (the username, or "guest") and "route".
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyParts       []string
    Prefix         string
    Debug          bool
}

var rateKeyParts = []string{"ip", "user", "route"}

func LoadRateLimitConfig() RateLimitConfig {
    c := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyParts:       keyParts("RATE_LIMIT_KEY_STRATEGY", "ip_user_route", rateKeyParts),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "itin:rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    // Shorthands: a burst size and a "one token every" interval.
    if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
        c.Capacity = b
    }
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        c.RefillTokens = 1
        c.RefillInterval = every
    }
    return c.normalize()
}

// normalize clamps values the limiter cannot work with.  Buckets must
// outlive a few refill intervals or an idle client would get a fresh
// bucket on every request.
func (c RateLimitConfig) normalize() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    if len(c.KeyParts) == 0 {
        c.KeyParts = rateKeyParts
    }
    return c
}
