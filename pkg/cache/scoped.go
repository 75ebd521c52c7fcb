package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache, prefixing every key with a namespace. Different
// subsystems (e.g. git revision lookups vs. future registries) can share one
// backing store without key collisions.
//
//	revs := cache.NewScoped(backing, "git:")
//	revs.Set(ctx, url, data, 0) // stored under "git:" + url
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a namespaced view of inner.
func NewScoped(inner Cache, prefix string) Cache {
	return &Scoped{inner: inner, prefix: prefix}
}

// Get retrieves a value under the scoped key.
func (c *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores a value under the scoped key.
func (c *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the scoped key.
func (c *Scoped) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the underlying cache.
func (c *Scoped) Close() error { return c.inner.Close() }

// Ensure Scoped implements Cache.
var _ Cache = (*Scoped)(nil)
