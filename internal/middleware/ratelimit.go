package middleware

import (
    "context"
    "log/slog"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    pkgerrors "github.com/pkg/errors"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/bike-store-inventory/internal/config"
)

// takeToken refills the bucket in KEYS[1] by one token per ARGV[3] ms,
// capped at ARGV[2], then takes one token if available.  It replies
// {allowed, remaining, wait_ms}.
var takeToken = redis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
local now = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local every = tonumber(ARGV[3])

if tokens == nil or stamp == nil then
    tokens = burst
    stamp = now
end
local gained = math.floor(math.max(0, now - stamp) / every)
if gained > 0 then
    tokens = math.min(burst, tokens + gained)
    stamp = stamp + gained * every
end

local allowed = 0
local wait = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
else
    wait = math.max(0, every - (now - stamp))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ARGV[4])
return {allowed, tokens, wait}
`)

type bucketReply struct {
    allowed   bool
    remaining int64
    wait      time.Duration
}

func parseBucketReply(v any) (bucketReply, error) {
    arr, ok := v.([]any)
    if !ok || len(arr) != 3 {
        return bucketReply{}, pkgerrors.Errorf("unexpected limiter reply %#v", v)
    }
    nums := make([]int64, 3)
    for i, x := range arr {
        n, ok := x.(int64)
        if !ok {
            return bucketReply{}, pkgerrors.Errorf("unexpected limiter reply %#v", v)
        }
        nums[i] = n
    }
    return bucketReply{allowed: nums[0] == 1, remaining: nums[1], wait: time.Duration(nums[2]) * time.Millisecond}, nil
}

// rateClass puts safe methods in the read bucket and the rest in the
// write bucket.
func rateClass(method string) string {
    switch method {
    case http.MethodGet, http.MethodHead, http.MethodOptions:
        return "read"
    }
    return "write"
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    parts := []string{cfg.Prefix, rateClass(c.Request().Method), ip}
    if strings.EqualFold(cfg.KeyStrategy, "ip_route") {
        parts = append(parts, c.Path())
    }
    return strings.Join(parts, ":")
}

// NewTokenBucket limits requests per client with Redis token buckets,
// one for reads and one for writes.  Without Redis, or when disabled, it
// passes through.  Redis errors fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *slog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := strconv.FormatInt(int64(cfg.TTL/time.Second), 10)
    every := cfg.RefillEvery.Milliseconds()

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            burst := cfg.ReadBurst
            if rateClass(c.Request().Method) == "write" {
                burst = cfg.WriteBurst
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
            defer cancel()
            raw, err := takeToken.Run(ctx, rdb, []string{key}, time.Now().UnixMilli(), burst, every, ttl).Result()
            if err != nil {
                logger.Warn("ratelimit: redis error, letting request through", "key", key, "error", err)
                return next(c)
            }
            reply, err := parseBucketReply(raw)
            if err != nil {
                logger.Warn("ratelimit: letting request through", "key", key, "error", err)
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(burst))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(reply.remaining, 10))
            if !reply.allowed {
                secs := int64((reply.wait + time.Second - 1) / time.Second)
                h.Set("Retry-After", strconv.FormatInt(secs, 10))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded", "retry_after": secs})
            }
            return next(c)
        }
    }
}
