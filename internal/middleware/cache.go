package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/bike-store-inventory/internal/config"
)

// cachedResponse is what a cache entry holds: enough to replay a 200.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

// bodyRecorder tees the response body into a buffer until limit bytes,
// after which the response is marked as too large to cache.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
    if !r.overflow {
        if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
            r.overflow = true
            r.buf.Reset()
        } else {
            r.buf.Write(b)
        }
    }
    return r.ResponseWriter.Write(b)
}

// cacheGroup names the resource collection a route belongs to: the first
// path segment after the version, e.g. "brands" for /v1/brands/:id.
func cacheGroup(path string) string {
    segs := strings.Split(strings.Trim(path, "/"), "/")
    if len(segs) > 1 && strings.HasPrefix(segs[0], "v") {
        return segs[1]
    }
    return segs[0]
}

// cacheKey is prefix:group:sha1(path[?query]).  The group stays readable
// so a write can drop every cached read of its collection.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    target := r.URL.Path
    if !strings.EqualFold(cfg.KeyStrategy, "path") && r.URL.RawQuery != "" {
        target += "?" + r.URL.RawQuery
    }
    sum := sha1.Sum([]byte(target))
    return cfg.Prefix + ":" + cacheGroup(c.Path()) + ":" + hex.EncodeToString(sum[:])
}

func replay(c echo.Context, cr cachedResponse) error {
    h := c.Response().Header()
    for k, vals := range cr.Header {
        if strings.EqualFold(k, echo.HeaderContentLength) {
            continue
        }
        h[k] = append([]string(nil), vals...)
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(cr.Status)
    _, err := c.Response().Write(cr.Body)
    return err
}

// NewRedisCache caches 200 responses of the configured methods in Redis
// and replays them with their headers.  Bodies larger than MaxBodyBytes
// are not cached.  Without Redis it passes through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = time.Minute
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Caches(c.Request().Method) {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var cr cachedResponse
                if json.Unmarshal(bs, &cr) == nil && cr.Status != 0 {
                    return replay(c, cr)
                }
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            hdr.Del(HeaderXRequestID)
            bs, err := json.Marshal(cachedResponse{Status: rec.status, Header: hdr, Body: rec.buf.Bytes()})
            if err == nil {
                // the request context may already be cancelled
                setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
                defer cancel()
                _ = rdb.Set(setCtx, key, bs, ttl).Err()
            }
            return nil
        }
    }
}

// InvalidateCache drops every cached read of the route's collection after
// a successful (2xx) write.  Failures are ignored; entries expire anyway.
func InvalidateCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)
            if status := c.Response().Status; err != nil || status < 200 || status > 299 {
                return err
            }
            ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
            defer cancel()
            iter := rdb.Scan(ctx, 0, cfg.Prefix+":"+cacheGroup(c.Path())+":*", 100).Iterator()
            var keys []string
            for iter.Next(ctx) {
                keys = append(keys, iter.Val())
            }
            if len(keys) > 0 {
                _ = rdb.Del(ctx, keys...).Err()
            }
            return nil
        }
    }
}
