package config

import (
    "log"
    "os"
    "slices"
    "strconv"
    "strings"
    "time"
)

// Helper functions shared by the Load* constructors.  Unset or malformed
// values fall back to the supplied default.

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}

// splitList splits a comma separated value, trimming blanks.
func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}

// keyParts reads an underscore separated strategy such as "ip_user_route"
// from env var k and returns its parts.  Unknown parts make the whole
// value fall back to def.
func keyParts(k, def string, allowed []string) []string {
    v := strings.ToLower(envStr(k, def))
    parts := strings.Split(v, "_")
    for _, p := range parts {
        if !slices.Contains(allowed, p) {
            log.Printf("config: %s=%q is not a combination of %s, using %q", k, v, strings.Join(allowed, ", "), def)
            return strings.Split(def, "_")
        }
    }
    return parts
}
