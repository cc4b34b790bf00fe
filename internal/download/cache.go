package download

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Catalog cache defaults.
const (
	DefaultCatalogTTL     = 10 * time.Minute
	DefaultCatalogCleanup = 5 * time.Minute
)

// CachedResolver memoizes successful resolutions per URL. Failures are
// never cached.
type CachedResolver struct {
	next  Resolver
	cache *gocache.Cache
}

// NewCachedResolver wraps next with a TTL cache.
func NewCachedResolver(next Resolver, ttl, cleanupInterval time.Duration) *CachedResolver {
	return &CachedResolver{
		next:  next,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Resolve returns a cached catalog or asks the wrapped resolver.
func (c *CachedResolver) Resolve(ctx context.Context, url string) (*Catalog, error) {
	if item, found := c.cache.Get(url); found {
		if catalog, ok := item.(*Catalog); ok {
			return cloneCatalog(catalog), nil
		}
	}

	catalog, err := c.next.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}
	c.cache.Set(url, catalog, gocache.DefaultExpiration)
	return cloneCatalog(catalog), nil
}

// Forget drops url from the cache.
func (c *CachedResolver) Forget(url string) {
	c.cache.Delete(url)
}

func cloneCatalog(c *Catalog) *Catalog {
	out := *c
	out.Formats = append(out.Formats[:0:0], c.Formats...)
	return &out
}
