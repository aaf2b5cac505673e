package ocrcache

import (
	"context"
	"time"
)

// orphanGrace is how old a persisted entry must be before a sweep treats
// its absence from the index as an inconsistency. Set writes the blob
// before inserting into the index, so very fresh on-disk entries may not
// be indexed yet.
const orphanGrace = time.Minute

// Sweep runs one expiry and consistency pass and returns the number of
// entries removed.
//
// Expired entries are processed one at a time, re-acquiring the index
// lock per entry, so a sweep never stalls concurrent gets and sets. The
// pass also reclaims blobs orphaned by earlier failed deletes. Sweep
// stops early when ctx is canceled.
func (c *Cache) Sweep(ctx context.Context) int {
	if !c.enabled {
		return 0
	}

	removed := 0
	for _, key := range c.index.ExpiredKeys(c.now()) {
		if ctx.Err() != nil {
			return removed
		}
		entry, ok := c.index.RemoveIfExpired(key, c.now())
		if !ok {
			continue
		}
		c.expirations.Add(1)
		if err := c.store.Delete(entry.Key); err != nil {
			c.log.Warn("ocrcache: deleting expired entry", "key", entry.Key, "error", err)
		}
		removed++
	}

	metas, err := c.store.Scan()
	if err != nil {
		c.log.Warn("ocrcache: consistency scan failed", "dir", c.dir, "error", err)
		return removed
	}
	now := c.now()
	for _, m := range metas {
		if ctx.Err() != nil {
			return removed
		}
		if c.index.Contains(m.Key) || now.Sub(m.CreatedAt) < orphanGrace {
			continue
		}
		if err := c.store.Delete(m.Key); err != nil {
			c.log.Warn("ocrcache: deleting orphaned blob", "key", m.Key, "error", err)
			continue
		}
		removed++
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is canceled. It blocks,
// so run it on its own goroutine:
//
//	go cache.RunSweeper(ctx, 5*time.Minute)
//
// Intervals <= 0 default to one minute.
func (c *Cache) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Sweep(ctx)
		}
	}
}
