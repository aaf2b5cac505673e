package ocrcache

import (
	"errors"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/ocrcache/internal/index"
	"github.com/meigma/ocrcache/internal/store"
)

const (
	defaultMaxEntries = 100
	defaultTTL        = time.Hour

	// artifactFormatVersion is stamped into every persisted entry.
	// Entries carrying a different version are discarded at startup, so
	// a schema change in the artifact payload surfaces as a miss rather
	// than as silent corruption.
	artifactFormatVersion = 1
)

// Cache memoizes OCR and table-extraction results on local disk.
//
// Keys are derived from a content digest of the input document plus the
// canonicalized processing configuration, so re-running a document with
// different settings never returns a stale result. Entries are bounded
// by count with LRU eviction and expire a fixed TTL after insertion.
//
// A Cache is an explicit object, not a process-wide singleton: the
// component wiring the application owns its lifecycle and shares it by
// reference. All methods are safe for concurrent use.
//
// Internal failures never abort the caller's pipeline: storage problems
// and corrupt entries degrade to miss or no-op semantics and are logged.
type Cache struct {
	dir        string
	maxEntries int
	ttl        time.Duration
	enabled    bool
	log        *slog.Logger
	storeOpts  []store.Option

	store *store.Store
	index *index.Index
	group singleflight.Group
	now   func() time.Time

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
}

// New creates a cache rooted at dir and rebuilds the in-memory index from
// any entries persisted by a previous run. Expired entries found during
// the rebuild are deleted rather than reinstated.
//
// An error is returned only for wiring problems (empty or uncreatable
// directory); once constructed, storage failures degrade to misses and
// no-ops instead of surfacing to callers.
func New(dir string, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:        dir,
		maxEntries: defaultMaxEntries,
		ttl:        defaultTTL,
		enabled:    true,
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if !c.enabled {
		return c, nil
	}
	if dir == "" {
		return nil, errors.New("ocrcache: cache dir is empty")
	}

	st, err := store.New(dir, c.storeOpts...)
	if err != nil {
		return nil, err
	}
	c.store = st
	c.index = index.New()
	if err := c.rebuild(); err != nil {
		// A failed scan is not fatal; the cache starts cold.
		c.log.Warn("ocrcache: index rebuild failed", "dir", dir, "error", err)
	}
	return c, nil
}

// Get returns the cached artifact for the given content digest and
// configuration. The boolean reports a hit; a miss means absent, expired,
// or unreadable. Corruption is resolved by evicting the broken entry and
// reporting a miss, never by returning an error or partial data.
func (c *Cache) Get(contentHash digest.Digest, cfg Config) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}
	key, err := deriveKey(contentHash, cfg)
	if err != nil {
		c.log.Warn("ocrcache: rejecting lookup with invalid input", "error", err)
		c.misses.Add(1)
		return nil, false
	}

	entry, res := c.index.Access(key, c.now())
	switch res {
	case index.Missing:
		c.misses.Add(1)
		return nil, false
	case index.Expired:
		c.expirations.Add(1)
		c.misses.Add(1)
		if err := c.store.Delete(entry.Key); err != nil {
			c.log.Warn("ocrcache: deleting expired entry", "key", key, "error", err)
		}
		return nil, false
	}

	// The disk read happens outside the index lock; the store's atomic
	// replace guarantees a reader never sees a torn blob. Singleflight
	// collapses concurrent reads of the same key.
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.store.Get(key)
	})
	if err != nil {
		c.log.Warn("ocrcache: evicting unreadable entry", "key", key, "error", err)
		c.index.Remove(key)
		_ = c.store.Delete(key)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.([]byte), true
}

// Set stores an artifact under the key derived from the content digest
// and configuration, fully replacing any previous entry for the same key
// and evicting least recently used entries if the capacity bound is
// exceeded.
//
// A non-nil error indicates an input error (invalid digest, malformed
// configuration, empty artifact) and leaves the cache unchanged. Storage
// failures are logged and swallowed: Set reports success and the entry is
// simply not cached.
func (c *Cache) Set(contentHash digest.Digest, cfg Config, artifact []byte) error {
	if !c.enabled {
		return nil
	}
	if len(artifact) == 0 {
		return ErrEmptyArtifact
	}
	key, err := deriveKey(contentHash, cfg)
	if err != nil {
		return err
	}

	now := c.now()
	meta := store.Meta{
		CreatedAt:     now,
		ExpiresAt:     now.Add(c.ttl),
		FormatVersion: artifactFormatVersion,
	}
	size, err := c.store.Put(key, artifact, meta)
	if err != nil {
		c.log.Warn("ocrcache: cache write failed", "key", key, "error", err)
		return nil
	}

	evicted := c.index.Insert(index.Entry{
		Key:            key,
		SizeBytes:      size,
		CreatedAt:      now,
		ExpiresAt:      meta.ExpiresAt,
		LastAccessedAt: now,
	}, c.maxEntries)
	c.deleteEvicted(evicted)
	return nil
}

// Clear empties the index and deletes every persisted blob. Clearing an
// already-empty cache is a no-op.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	c.index.Clear()
	return c.store.Clear()
}

// Stats returns a snapshot of cache state without mutating it.
func (c *Cache) Stats() Stats {
	st := Stats{
		Enabled:     c.enabled,
		MaxEntries:  c.maxEntries,
		TTL:         c.ttl,
		Dir:         c.dir,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
	}
	if !c.enabled {
		return st
	}
	st.Items = c.index.Len()
	size, err := c.store.TotalSizeBytes()
	if err != nil {
		c.log.Warn("ocrcache: sizing cache directory", "dir", c.dir, "error", err)
		return st
	}
	st.TotalDiskBytes = size
	return st
}

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// rebuild reconstructs the index from persisted metadata. Survivors are
// inserted oldest-first so a lowered capacity evicts the earliest entries.
func (c *Cache) rebuild() error {
	metas, err := c.store.Scan()
	if err != nil {
		return err
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.Before(metas[j].CreatedAt)
	})

	now := c.now()
	for _, m := range metas {
		if m.FormatVersion != artifactFormatVersion || !now.Before(m.ExpiresAt) {
			if err := c.store.Delete(m.Key); err != nil {
				c.log.Warn("ocrcache: deleting stale entry", "key", m.Key, "error", err)
			}
			continue
		}
		evicted := c.index.Insert(index.Entry{
			Key:            m.Key,
			SizeBytes:      m.SizeBytes,
			CreatedAt:      m.CreatedAt,
			ExpiresAt:      m.ExpiresAt,
			LastAccessedAt: m.CreatedAt,
		}, c.maxEntries)
		c.deleteEvicted(evicted)
	}
	return nil
}

// deleteEvicted removes the blobs behind entries already dropped from the
// index. A failed delete leaves an orphaned blob; the index remains the
// authority and Sweep reclaims the file later.
func (c *Cache) deleteEvicted(entries []index.Entry) {
	for _, e := range entries {
		c.evictions.Add(1)
		if err := c.store.Delete(e.Key); err != nil {
			c.log.Warn("ocrcache: deleting evicted blob", "key", e.Key, "error", err)
		}
	}
}
