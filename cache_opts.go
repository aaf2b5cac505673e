package ocrcache

import (
	"log/slog"
	"os"
	"time"

	"github.com/meigma/ocrcache/internal/store"
)

// Option configures a Cache.
type Option func(*Cache)

// WithMaxEntries bounds the number of live entries. When an insertion
// would exceed the bound, least recently used entries are evicted until
// the count is within it. Values <= 0 disable the bound. Defaults to 100.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		c.maxEntries = n
	}
}

// WithTTL sets the fixed lifetime of each entry, measured from insertion.
// TTL is never refreshed by reads: recency affects eviction order, not
// expiry. Defaults to one hour.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithEnabled toggles caching. A disabled cache reports a miss on every
// Get and treats Set as a successful no-op, so callers never need to
// branch on whether caching is on. Defaults to enabled.
func WithEnabled(enabled bool) Option {
	return func(c *Cache) {
		c.enabled = enabled
	}
}

// WithLogger sets the logger used for swallowed failures.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithShardPrefixLen sets the number of key characters used to shard the
// cache directory. Use 0 for a flat layout. Defaults to 2.
func WithShardPrefixLen(n int) Option {
	return func(c *Cache) {
		c.storeOpts = append(c.storeOpts, store.WithShardPrefixLen(n))
	}
}

// WithDirPerm sets the permissions used for cache directories.
func WithDirPerm(mode os.FileMode) Option {
	return func(c *Cache) {
		c.storeOpts = append(c.storeOpts, store.WithDirPerm(mode))
	}
}
