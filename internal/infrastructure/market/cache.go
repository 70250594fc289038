package market

import (
	"context"
	"encoding/json"
	"time"

	"github.com/turtacn/casefolio/internal/infrastructure/database/redis"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
)

const (
	cacheName       = "priceoverview"
	DefaultCacheTTL = time.Hour
)

// CachedFetcher serves priceoverview documents from a Redis cache and falls
// through to next on a miss. Errors are never cached.
type CachedFetcher struct {
	next    Fetcher
	cache   redis.Cache
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

func NewCachedFetcher(next Fetcher, cache redis.Cache, ttl time.Duration, log logging.Logger, metrics *prometheus.AppMetrics) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &CachedFetcher{next: next, cache: cache, ttl: ttl, logger: log, metrics: metrics}
}

func cacheKey(name string) string {
	return cacheName + ":" + name
}

func (f *CachedFetcher) FetchRaw(ctx context.Context, name string) (json.RawMessage, error) {
	var (
		raw    json.RawMessage
		loaded bool
	)
	err := f.cache.GetOrSet(ctx, cacheKey(name), &raw, f.ttl, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return f.next.FetchRaw(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	prometheus.RecordCacheAccess(f.metrics, cacheName, !loaded)
	if !loaded {
		f.logger.Debug("Quote served from cache", logging.String("item", name))
	}
	return raw, nil
}

// Invalidate drops cached documents for names.
func (f *CachedFetcher) Invalidate(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = cacheKey(n)
	}
	return f.cache.Delete(ctx, keys...)
}

//Personal.AI order the ending
