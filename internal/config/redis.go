package config

// Redis backs the catalog cache and the refresh throttle.  When it cannot
// be reached at startup the till runs without either.

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for Redis.
type RedisConfig struct {
	Enabled  bool   // REDIS_ENABLED
	Addr     string // REDIS_HOST:REDIS_PORT, or REDIS_ADDR
	Password string // REDIS_PASSWORD
	DB       int    // REDIS_DB
	TLS      bool   // REDIS_TLS
}

// LoadRedisConfig reads the REDIS_* variables.  REDIS_HOST and REDIS_PORT
// take precedence over REDIS_ADDR.
func LoadRedisConfig() RedisConfig {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		addr = host + ":" + port
	}
	return RedisConfig{
		Enabled:  envBool("REDIS_ENABLED", true),
		Addr:     addr,
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
}

// NewRedisClient connects to Redis and pings it with a short timeout.  It
// returns nil when Redis is disabled or unreachable; callers degrade by
// skipping the cache and the throttle.
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
