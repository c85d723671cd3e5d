package config

import "time"

// RateLimitConfig configures the Redis token buckets.  Every client gets
// one bucket for reads (GET, HEAD) and a smaller one for writes, so a
// burst of stock adjustments cannot starve catalog browsing.  Each bucket
// regains one token every RefillEvery.
type RateLimitConfig struct {
    Enabled     bool
    ReadBurst   int
    WriteBurst  int
    RefillEvery time.Duration
    TTL         time.Duration // idle buckets expire after TTL
    KeyStrategy string        // ip | ip_route
    Prefix      string
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:     envBool("RATE_LIMIT_ENABLED", true),
        ReadBurst:   envInt("RATE_LIMIT_READ_BURST", 120),
        WriteBurst:  envInt("RATE_LIMIT_WRITE_BURST", 30),
        RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", 500*time.Millisecond),
        TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip"),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "bikes:rl"),
    }
    cfg.ReadBurst = max(cfg.ReadBurst, 1)
    cfg.WriteBurst = max(cfg.WriteBurst, 1)
    if cfg.RefillEvery <= 0 {
        cfg.RefillEvery = 500 * time.Millisecond
    }
    // a bucket must outlive the time it takes to refill
    refill := time.Duration(max(cfg.ReadBurst, cfg.WriteBurst)) * cfg.RefillEvery
    cfg.TTL = max(cfg.TTL, refill)
    return cfg
}
