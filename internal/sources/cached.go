package sources

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"spinelookup/internal/query"
)

// Cached wraps a Source with a TTL response cache. Spine photos often
// contain repeated queries (retries, rotated variants of the same spine),
// and the external APIs are slow and rate limited.
type Cached struct {
	src   Source
	cache *gocache.Cache
}

// NewCached wraps src with a cache holding responses for ttl.
func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{
		src:   src,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *Cached) Name() string {
	return c.src.Name()
}

func (c *Cached) Supports(role query.Role) bool {
	return c.src.Supports(role)
}

// Search serves a cached result set when available; only successful
// responses are cached, so transient failures get retried.
func (c *Cached) Search(ctx context.Context, q query.Query) ([]BookRecord, error) {
	key := q.Role.String() + "|" + q.Language + "|" + q.Text

	if hit, ok := c.cache.Get(key); ok {
		return hit.([]BookRecord), nil
	}

	records, err := c.src.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, records, gocache.DefaultExpiration)
	return records, nil
}
