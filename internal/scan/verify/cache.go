package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"twigascan/internal/scan/metrics"
)

const (
	domainCacheKeyPrefix      = "twigascan:domaincheck:"
	defaultDomainCacheTTL     = 5 * time.Minute
	defaultNegativeCacheRatio = 5
)

// CachedDomainChecker memoises verdicts in Redis, keyed by scheme and host.
// Failed verdicts are kept for a shorter time than successful ones. Cache
// errors fall through to the wrapped checker.
type CachedDomainChecker struct {
	next        DomainChecker
	client      *redis.Client
	ttl         time.Duration
	negativeTTL time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// CachedDomainCheckerOption configures a CachedDomainChecker.
type CachedDomainCheckerOption func(*CachedDomainChecker)

// WithCacheTTL sets the lifetime of valid verdicts. Invalid verdicts live a
// fifth as long unless WithNegativeCacheTTL is also given.
func WithCacheTTL(ttl time.Duration) CachedDomainCheckerOption {
	return func(c *CachedDomainChecker) {
		if ttl > 0 {
			c.ttl = ttl
			c.negativeTTL = ttl / defaultNegativeCacheRatio
		}
	}
}

// WithNegativeCacheTTL sets the lifetime of invalid verdicts.
func WithNegativeCacheTTL(ttl time.Duration) CachedDomainCheckerOption {
	return func(c *CachedDomainChecker) {
		c.negativeTTL = ttl
	}
}

func WithCacheMetrics(m *metrics.Metrics) CachedDomainCheckerOption {
	return func(c *CachedDomainChecker) {
		c.metrics = m
	}
}

func WithCacheLogger(l *slog.Logger) CachedDomainCheckerOption {
	return func(c *CachedDomainChecker) {
		c.logger = l
	}
}

// NewCachedDomainChecker wraps next with a Redis cache.
func NewCachedDomainChecker(next DomainChecker, client *redis.Client, opts ...CachedDomainCheckerOption) *CachedDomainChecker {
	c := &CachedDomainChecker{
		next:        next,
		client:      client,
		ttl:         defaultDomainCacheTTL,
		negativeTTL: defaultDomainCacheTTL / defaultNegativeCacheRatio,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Check serves a cached verdict when present, otherwise delegates and stores
// the result. Verdicts produced after the caller's context ended are not cached.
func (c *CachedDomainChecker) Check(ctx context.Context, rawURL string) DomainVerdict {
	key, ok := domainCacheKey(rawURL)
	if !ok {
		return c.next.Check(ctx, rawURL)
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v DomainVerdict
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			c.metrics.IncrementDomainCache("hit")
			return v
		}
		c.metrics.IncrementDomainCache("error")
	case errors.Is(err, redis.Nil):
		c.metrics.IncrementDomainCache("miss")
	default:
		c.metrics.IncrementDomainCache("error")
		c.logger.DebugContext(ctx, "domain check cache read failed", "error", err)
	}

	v := c.next.Check(ctx, rawURL)
	if ctx.Err() != nil {
		return v
	}

	ttl := c.ttl
	if !v.Valid {
		ttl = c.negativeTTL
	}
	if ttl <= 0 {
		return v
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	if err := c.client.Set(ctx, key, encoded, ttl).Err(); err != nil {
		c.logger.DebugContext(ctx, "domain check cache write failed", "error", err)
	}
	return v
}

func domainCacheKey(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return domainCacheKeyPrefix + strings.ToLower(u.Scheme) + ":" + strings.ToLower(u.Hostname()), true
}
