package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"signal-dashboard/config"
	"signal-dashboard/observability"
)

// Fetcher loads the value for one query key
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value   any
	expires time.Time
}

// Cache holds query results for a TTL, coalesces identical in-flight queries and
// retries temporary failures. Only successful results are cached.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group

	ttl          time.Duration
	fetchTimeout time.Duration
	retry        RetryConfig
	metrics      *observability.Metrics
	now          func() time.Time
}

// DefaultFetchTimeout bounds one shared fetch including its retries
const DefaultFetchTimeout = 2 * time.Minute

// New creates a Cache. A zero ttl disables storage but keeps coalescing.
func New(ttl time.Duration, retry RetryConfig, metrics *observability.Metrics) *Cache {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &Cache{
		entries:      make(map[string]entry),
		ttl:          ttl,
		fetchTimeout: DefaultFetchTimeout,
		retry:        retry,
		metrics:      metrics,
		now:          time.Now,
	}
}

// NewFromConfig creates a Cache from the cache section of the configuration
func NewFromConfig(cfg *config.Config, metrics *observability.Metrics) *Cache {
	backoff := time.Duration(cfg.Cache.RetryBackoffMS) * time.Millisecond
	retry := RetryConfig{
		MaxRetries:     cfg.Cache.MaxRetries,
		InitialBackoff: backoff,
		MaxBackoff:     DefaultRetryConfig.MaxBackoff,
	}
	c := New(time.Duration(cfg.Cache.TTLSeconds)*time.Second, retry, metrics)

	// every attempt may use the full request timeout plus the longest backoff
	if cfg.API.TimeoutSeconds > 0 {
		attempts := time.Duration(retry.MaxRetries + 1)
		c.fetchTimeout = attempts * (time.Duration(cfg.API.TimeoutSeconds)*time.Second + retry.MaxBackoff)
	}
	return c
}

// Query returns the cached value for key or runs fn to obtain it.
// Concurrent callers with the same key share a single fn execution. The shared fetch is
// detached from every caller's cancellation and bounded by the fetch timeout; each caller
// stops waiting when its own ctx is done.
func (c *Cache) Query(ctx context.Context, key, resource string, fn Fetcher) (any, error) {
	if value, ok := c.lookup(key); ok {
		c.metrics.RecordCacheHit(resource)
		return value, nil
	}
	c.metrics.RecordCacheMiss(resource)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// a fetch that finished between lookup and DoChan already stored the value
		if value, ok := c.lookup(key); ok {
			return value, nil
		}

		ctx, cancel := context.WithTimeout(fetchCtx, c.fetchTimeout)
		defer cancel()

		var result any
		err := WithRetry(ctx, c.retry, func(attempt int) error {
			if attempt > 0 {
				c.metrics.RecordCacheRetry(resource)
			}
			v, err := fn(ctx)
			if err != nil {
				return err
			}
			result = v
			return nil
		})
		if err != nil {
			return nil, err
		}

		c.store(key, result)
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.RecordCacheCoalesced(resource)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get is the typed form of Cache.Query
func Get[T any](ctx context.Context, c *Cache, key, resource string, fn func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.Query(ctx, key, resource, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached value for %s has type %T", key, value)
	}
	return typed, nil
}

// Invalidate drops the entry for key
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of fresh entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expires: c.now().Add(c.ttl)}
}
