package config

import (
    "log"
    "net/http"
    "strings"
    "time"
)

// CacheConfig controls the Redis read-through cache in front of the GET
// endpoints.  Every write flushes all keys under Prefix, so TTL only
// bounds how long an entry may sit unused.
//
// KeyParts lists which request parts identify a cached response, drawn
// from "method", "route" and "query".  Path parameter values are always
// part of the key.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyParts     []string
    Prefix       string
    MaxBodyBytes int
}

var cacheKeyParts = []string{"method", "route", "query"}

func LoadCacheConfig() CacheConfig {
    c := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      safeMethods(envStr("CACHE_METHODS", http.MethodGet)),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyParts:     keyParts("CACHE_KEY_STRATEGY", "route_query", cacheKeyParts),
        Prefix:       strings.TrimSuffix(envStr("CACHE_PREFIX", "itin:cache"), ":"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if c.TTL <= 0 || len(c.Methods) == 0 {
        c.Enabled = false
    }
    return c
}

// safeMethods upper-cases the list and keeps only GET and HEAD; caching a
// write would replay it to other clients.
func safeMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range splitList(s) {
        switch p = strings.ToUpper(p); p {
        case http.MethodGet, http.MethodHead:
            m[p] = true
        default:
            log.Printf("config: ignoring non-cacheable method %s", p)
        }
    }
    return m
}
