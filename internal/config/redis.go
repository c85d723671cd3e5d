package config

import (
    "context"
    "crypto/tls"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis server used for rate limiting and the
// catalog response cache.
type RedisConfig struct {
    Enabled  bool
    Addr     string
    Password string
    DB       int
    TLS      bool
}

// LoadRedisConfig reads REDIS_ENABLED, REDIS_HOST/REDIS_PORT or REDIS_ADDR
// (host:port wins when both are set), REDIS_PASSWORD, REDIS_DB and
// REDIS_TLS.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    return RedisConfig{
        Enabled:  envBool("REDIS_ENABLED", true),
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
        TLS:      envBool("REDIS_TLS", false),
    }
}

// NewRedisClient connects to Redis and pings it with a short timeout.  It
// returns nil when Redis is disabled or unreachable; callers then run
// without caching and rate limiting.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    if !cfg.Enabled || strings.TrimSpace(cfg.Addr) == "" {
        return nil
    }
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
