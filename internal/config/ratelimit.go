package config

import "time"

// RateLimitConfig configures the Redis token bucket that throttles catalog
// refreshes, so repeated clicks cannot exhaust the film source's quota.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig reads REFRESH_LIMIT_* variables.  By default a
// burst of 3 refreshes is allowed, then one per 20 seconds.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("REFRESH_LIMIT_ENABLED", true),
		Capacity:       envInt("REFRESH_LIMIT_BURST", 3),
		RefillTokens:   envInt("REFRESH_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("REFRESH_LIMIT_REFILL_INTERVAL", 20*time.Second),
		TTL:            envDur("REFRESH_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("REFRESH_LIMIT_PREFIX", "cinepos:rl"),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
