package config

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("DATABASE_URL", "app:pw@tcp(db:3306)/thai")

    cfg := Load()
    assert.Equal(t, "dev", cfg.Env)
    assert.Equal(t, "8000", cfg.Port)
    assert.Equal(t, 60, cfg.AccessTTLMin)
    assert.True(t, cfg.AutoMigrate)
    assert.True(t, cfg.Seed)
    assert.False(t, cfg.CookieSecure)
    assert.Equal(t, "app:pw@tcp(db:3306)/thai", cfg.DatabaseURL)
}

func TestDatabaseURLFromParts(t *testing.T) {
    t.Setenv("DATABASE_URL", "")
    t.Setenv("DB_USER", "app")
    t.Setenv("DB_PASS", "pw")
    t.Setenv("DB_HOST", "mysql")
    t.Setenv("DB_NAME", "thai")

    assert.Equal(t, "app:pw@tcp(mysql:3306)/thai", databaseURL())

    t.Setenv("DB_PASS", "")
    t.Setenv("DB_PORT", "3307")
    assert.Equal(t, "app@tcp(mysql:3307)/thai", databaseURL())
}

func TestEnvHelpersFallBack(t *testing.T) {
    t.Setenv("X_BOOL", "maybe")
    t.Setenv("X_INT", "ten")
    t.Setenv("X_DUR", "soon")
    assert.True(t, envBool("X_BOOL", true))
    assert.Equal(t, 7, envInt("X_INT", 7))
    assert.Equal(t, time.Minute, envDur("X_DUR", time.Minute))

    t.Setenv("X_BOOL", "off")
    assert.False(t, envBool("X_BOOL", true))
    assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
}

func TestRateLimitConfigNormalizes(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
    assert.Equal(t, 10*time.Second, cfg.TTL)

    t.Setenv("RATE_LIMIT_BURST", "20")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")
    cfg = LoadRateLimitConfig()
    assert.Equal(t, 20, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, 500*time.Millisecond, cfg.RefillInterval)
}

func TestCacheAndQueueConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head, post")
    t.Setenv("CACHE_PREFIX", "itin:cache:")
    c := LoadCacheConfig()
    assert.True(t, c.Enabled)
    assert.True(t, c.Methods["GET"])
    assert.True(t, c.Methods["HEAD"])
    assert.False(t, c.Methods["POST"])
    assert.Equal(t, "itin:cache", c.Prefix)
    assert.Equal(t, []string{"route", "query"}, c.KeyParts)

    t.Setenv("CACHE_TTL", "0s")
    assert.False(t, LoadCacheConfig().Enabled)

    t.Setenv("RABBITMQ_URL", "")
    t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
    q := LoadQueueConfig()
    assert.False(t, q.Enabled)
    assert.Equal(t, "amqp://u:p@broker:5672/", q.URL)
    assert.Equal(t, "itinerary.created", q.Queue)

    t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
    assert.Equal(t, []string{"https://a.example", "https://b.example"}, LoadCORSConfig().AllowedOrigins)
}

func TestKeyParts(t *testing.T) {
    allowed := []string{"ip", "user", "route"}

    t.Setenv("X_KEY", "USER_route")
    assert.Equal(t, []string{"user", "route"}, keyParts("X_KEY", "ip", allowed))

    t.Setenv("X_KEY", "ip_cookie")
    assert.Equal(t, []string{"ip", "user"}, keyParts("X_KEY", "ip_user", allowed))

    t.Setenv("X_KEY", "")
    assert.Equal(t, []string{"ip"}, keyParts("X_KEY", "ip", allowed))
}

func TestRedisConfig(t *testing.T) {
    t.Setenv("REDIS_ADDR", "cache:6380")
    assert.Equal(t, "cache:6380", LoadRedisConfig().Addr)

    t.Setenv("REDIS_HOST", "redis")
    t.Setenv("REDIS_PORT", "6379")
    assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)

    t.Setenv("REDIS_ENABLED", "false")
    cfg := LoadRedisConfig()
    assert.False(t, cfg.Enabled)
    assert.Nil(t, NewRedisClient(context.Background(), cfg))
}
