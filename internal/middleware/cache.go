package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/thai-itinerary/internal/config"
)

// captureWriter tees the response body into buf (up to limit bytes) while
// forwarding everything to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    switch remain := cw.limit - cw.size; {
    case cw.limit <= 0:
        cw.buf.Write(b)
    case remain >= int64(len(b)):
        cw.buf.Write(b)
    case remain > 0:
        cw.buf.Write(b[:remain])
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body outgrew the capture limit.
func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// generationKey holds the counter InvalidateCache bumps.  It sits outside
// the "<prefix>:*" namespace so purging entries never resets it.
func generationKey(cfg config.CacheConfig) string { return cfg.Prefix + "-gen" }

// generation returns the current cache generation; a missing counter is 0.
func generation(ctx context.Context, rdb *redis.Client, cfg config.CacheConfig) (int64, error) {
    gen, err := rdb.Get(ctx, generationKey(cfg)).Int64()
    if errors.Is(err, redis.Nil) {
        return 0, nil
    }
    return gen, err
}

// cacheKeyFrom hashes the request parts listed in KeyParts together with
// the path parameter values.  gen is the generation the request started
// in, so a response computed before a write can only be stored under a
// key that later readers no longer look up.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context, gen int64) string {
    r := c.Request()
    var b strings.Builder
    for _, part := range cfg.KeyParts {
        switch part {
        case "method":
            b.WriteString("method:" + r.Method + ":")
        case "route":
            b.WriteString("route:" + c.Path() + ":")
        case "query":
            b.WriteString("q:" + r.URL.RawQuery + ":")
        }
    }
    // ":id" is part of the route pattern, so the value has to be added.
    b.WriteString("p:" + strings.Join(c.ParamValues(), "/"))
    sum := sha1.Sum([]byte(b.String()))
    return fmt.Sprintf("%s:%d:%x", cfg.Prefix, gen, sum[:])
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// skipCaching leaves responses that must not be shared out of the cache.
func skipCaching(h http.Header) bool {
    return h.Get(echo.HeaderSetCookie) != "" || strings.Contains(h.Get("Cache-Control"), "no-store")
}

// NewRedisCache replays successful reads of reference data from Redis.
// Only 200 responses are stored, headers included, for cfg.TTL; a client
// sending "Cache-Control: no-cache" bypasses the lookup but refreshes the
// entry.  Writes go through InvalidateCache so entries never outlive a
// change by more than one request.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if !cfg.Methods[strings.ToUpper(req.Method)] {
                return next(c)
            }
            gen, err := generation(req.Context(), rdb, cfg)
            if err != nil {
                c.Logger().Warnf("cache: read generation: %v", err)
                return next(c)
            }
            key := cacheKeyFrom(cfg, c, gen)

            if !strings.Contains(req.Header.Get("Cache-Control"), "no-cache") {
                if bs, err := rdb.Get(req.Context(), key).Bytes(); err == nil {
                    if status, hdr, body, ok := decodePayload(bs); ok {
                        for k, vals := range hdr {
                            if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, "X-Cache") {
                                continue
                            }
                            for _, v := range vals {
                                c.Response().Header().Add(k, v)
                            }
                        }
                        c.Response().Header().Set("X-Cache", "HIT")
                        c.Response().WriteHeader(status)
                        _, _ = c.Response().Write(body)
                        return nil
                    }
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated() || skipCaching(c.Response().Header()) {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                // The request context may already be done once the body is flushed.
                ctx, cancel := context.WithTimeout(context.Background(), time.Second)
                defer cancel()
                if err := rdb.SetEx(ctx, key, payload, ttl).Err(); err != nil {
                    c.Logger().Warnf("cache: store %s: %v", key, err)
                }
            }
            return nil
        }
    }
}

// InvalidateCache starts a new cache generation after a successful (2xx)
// write passes through it, then drops the entries of older generations.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            if err != nil || c.Response().Status/100 != 2 {
                return err
            }
            ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
            defer cancel()
            if ierr := rdb.Incr(ctx, generationKey(cfg)).Err(); ierr != nil {
                c.Logger().Errorf("cache: bump generation: %v", ierr)
            }
            if n, ierr := purgePrefix(ctx, rdb, cfg.Prefix); ierr != nil {
                c.Logger().Warnf("cache: invalidate %s: %v", cfg.Prefix, ierr)
            } else if n > 0 {
                c.Logger().Debugf("cache: invalidated %d entries", n)
            }
            return nil
        }
    }
}

func purgePrefix(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
    var (
        cursor  uint64
        removed int
    )
    for {
        keys, next, err := rdb.Scan(ctx, cursor, prefix+":*", 200).Result()
        if err != nil {
            return removed, err
        }
        if len(keys) > 0 {
            if err := rdb.Del(ctx, keys...).Err(); err != nil {
                return removed, err
            }
            removed += len(keys)
        }
        if next == 0 {
            return removed, nil
        }
        cursor = next
    }
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
