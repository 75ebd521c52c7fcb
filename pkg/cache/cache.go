// Package cache provides small byte-oriented caches used by lair.
//
// The fetcher stores resolved source revisions here so that repeat runs can
// skip network round-trips, and the CLI exposes the cache via `lair cache`.
// Entries are opaque byte slices with an optional TTL; interpretation is up
// to the caller.
package cache

import (
	"context"
	"time"
)

// Cache is the minimal store interface shared by all cache backends.
//
// Implementations must treat a missing key as a miss, not an error, so the
// common pattern is:
//
//	data, hit, err := c.Get(ctx, key)
//	if err != nil || !hit {
//	    // fetch fresh and c.Set(...)
//	}
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
