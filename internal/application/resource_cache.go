package application

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/room-reservation/internal/persistence"
)

const (
	defaultResourceCacheSize = 256
	defaultResourceCacheTTL  = 5 * time.Minute
)

// resourceCache holds recently read or written catalog rows keyed by ID.
// Writes go through it, so a created resource is served without a reread.
type resourceCache struct {
	entries *expirable.LRU[string, persistence.Resource]
}

func newResourceCache(size int, ttl time.Duration) *resourceCache {
	if size <= 0 {
		size = defaultResourceCacheSize
	}
	if ttl <= 0 {
		ttl = defaultResourceCacheTTL
	}
	return &resourceCache{entries: expirable.NewLRU[string, persistence.Resource](size, nil, ttl)}
}

func (c *resourceCache) Get(id string) (persistence.Resource, bool) {
	if c == nil {
		return persistence.Resource{}, false
	}
	return c.entries.Get(id)
}

func (c *resourceCache) Store(resource persistence.Resource) {
	if c == nil {
		return
	}
	c.entries.Add(resource.ID, resource)
}
