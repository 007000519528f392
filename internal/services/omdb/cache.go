package omdb

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/gowatchlist/internal/metrics"
	"github.com/patrickmn/go-cache"
)

// CachedClient remembers successful lookups for a while. Failures are never
// cached so a later backfill gets another chance.
type CachedClient struct {
	client  *Client
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// NewCachedClient wraps client with a cache whose entries live for ttl
func NewCachedClient(client *Client, ttl time.Duration, m *metrics.Metrics) *CachedClient {
	return &CachedClient{
		client:  client,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
	}
}

// Lookup implements the poster lookup with caching
func (c *CachedClient) Lookup(ctx context.Context, title, mediaType string) Result {
	return c.cached(cacheKey(title, mediaType, 0), func() Result {
		return c.client.Lookup(ctx, title, mediaType)
	})
}

// LookupWithYear implements the year-qualified poster lookup with caching
func (c *CachedClient) LookupWithYear(ctx context.Context, title, mediaType string, year int) Result {
	return c.cached(cacheKey(title, mediaType, year), func() Result {
		return c.client.LookupWithYear(ctx, title, mediaType, year)
	})
}

// Refresh always queries OMDb and replaces the cached result. A failed
// refresh evicts the entry so a stale poster is not served afterwards.
func (c *CachedClient) Refresh(ctx context.Context, title, mediaType string) Result {
	key := cacheKey(title, mediaType, 0)
	result := c.client.Lookup(ctx, title, mediaType)
	if result.Success {
		c.cache.SetDefault(key, copyResult(result))
	} else {
		c.cache.Delete(key)
	}
	return result
}

func (c *CachedClient) cached(key string, lookup func() Result) Result {
	if value, found := c.cache.Get(key); found {
		c.metrics.ObserveLookup(metrics.LookupCacheHit)
		return copyResult(value.(Result))
	}

	result := lookup()
	if result.Success {
		c.cache.SetDefault(key, copyResult(result))
	}
	return result
}

func cacheKey(title, mediaType string, year int) string {
	return strings.ToLower(CleanTitle(title)) + "|" + MapMediaType(mediaType) + "|" + strconv.Itoa(year)
}

// copyResult keeps callers from sharing the cached poster pointer
func copyResult(result Result) Result {
	if result.PosterURL != nil {
		poster := *result.PosterURL
		result.PosterURL = &poster
	}
	return result
}
