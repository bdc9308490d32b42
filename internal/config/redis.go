package config

// Redis backs the response cache and the shared rate limiter.  Both
// degrade gracefully when the client is nil.

import (
    "context"
    "crypto/tls"
    "log"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

type RedisConfig struct {
    Enabled  bool
    Addr     string
    Password string
    DB       int
    TLS      bool
    // PingTimeout bounds the startup connectivity check.
    PingTimeout time.Duration
}

// LoadRedisConfig reads REDIS_ENABLED, REDIS_ADDR (or REDIS_HOST plus
// REDIS_PORT, which win when both are set), REDIS_PASSWORD, REDIS_DB and
// REDIS_TLS.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    return RedisConfig{
        Enabled:     envBool("REDIS_ENABLED", true),
        Addr:        addr,
        Password:    os.Getenv("REDIS_PASSWORD"),
        DB:          envInt("REDIS_DB", 0),
        TLS:         envBool("REDIS_TLS", false),
        PingTimeout: envDur("REDIS_PING_TIMEOUT", 2*time.Second),
    }
}

// NewRedisClient connects and pings once.  It returns nil when Redis is
// disabled or unreachable so callers fall back to their in-process paths.
func NewRedisClient(ctx context.Context, cfg RedisConfig) *redis.Client {
    if !cfg.Enabled {
        return nil
    }
    opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
    if cfg.TLS {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(opts)

    pctx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
    defer cancel()
    if err := client.Ping(pctx).Err(); err != nil {
        log.Printf("redis %s: %v", cfg.Addr, err)
        _ = client.Close()
        return nil
    }
    return client
}
