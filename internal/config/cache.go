package config

import (
    "net/http"
    "strings"
    "time"

    "github.com/samber/lo"
)

// CacheConfig drives the catalog response cache. Entries are stored under
// Prefix and live for TTL. KeyStrategy "path" ignores the query string,
// "path_query" keys on both.
type CacheConfig struct {
    Enabled      bool
    Methods      []string // upper-case, e.g. GET, HEAD
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// Caches reports whether responses to method are cacheable.
func (c CacheConfig) Caches(method string) bool {
    return lo.Contains(c.Methods, strings.ToUpper(method))
}

// LoadCacheConfig reads the CACHE_* variables. Catalog data changes rarely
// and writes invalidate it, so the default TTL is a minute.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      splitMethods(envStr("CACHE_METHODS", http.MethodGet)),
        TTL:          envDur("CACHE_TTL", time.Minute),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "path_query"),
        Prefix:       envStr("CACHE_PREFIX", "bikes:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

// splitMethods turns "get, head" into [GET HEAD]; blanks and repeats are dropped.
func splitMethods(s string) []string {
    methods := lo.FilterMap(strings.Split(s, ","), func(p string, _ int) (string, bool) {
        p = strings.ToUpper(strings.TrimSpace(p))
        return p, p != ""
    })
    return lo.Uniq(methods)
}
