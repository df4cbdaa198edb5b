// Package ratelimit resolves the spec's open question about undocumented
// rate limiting on the search/fetch targets: a per-host token bucket,
// shared across processes via Redis when configured, falling back to an
// in-process limiter for single-process dev.
package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

type HostLimiter struct {
	redisClient *redis.Client
	log         *logger.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	ratePerSecond float64
	burst         int
}

func NewHostLimiter(redisAddr string, ratePerSecond float64, burst int, log *logger.Logger) *HostLimiter {
	hl := &HostLimiter{
		log:           log.With("component", "HostLimiter"),
		limiters:      make(map[string]*rate.Limiter),
		ratePerSecond: ratePerSecond,
		burst:         burst,
	}
	if redisAddr != "" {
		hl.redisClient = redis.NewClient(&redis.Options{Addr: redisAddr})
	}
	return hl
}

// Wait blocks until a token is available for rawURL's host, or ctx is done.
func (hl *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	if hl.redisClient != nil {
		return hl.waitRedis(ctx, host)
	}
	return hl.limiterFor(host).Wait(ctx)
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	if l, ok := hl.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(hl.ratePerSecond), hl.burst)
	hl.limiters[host] = l
	return l
}

// waitRedis implements a coarse fixed-window counter: INCR a per-host,
// per-second key and back off briefly if the window's budget is spent.
// This is intentionally simple — a sliding-window or leaky-bucket scheme
// is unnecessary for a handful of processes sharing one search/fetch quota.
func (hl *HostLimiter) waitRedis(ctx context.Context, host string) error {
	limit := int64(hl.burst)
	if limit <= 0 {
		limit = 1
	}
	for {
		window := time.Now().Unix()
		key := "ratelimit:" + host + ":" + time.Unix(window, 0).Format("20060102150405")
		count, err := hl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			hl.log.Warn("redis rate limiter unavailable, falling back to in-process limiter", "error", err)
			return hl.limiterFor(host).Wait(ctx)
		}
		if count == 1 {
			hl.redisClient.Expire(ctx, key, time.Second)
		}
		if count <= limit {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
