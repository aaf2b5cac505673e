// Package index tracks live cache entries and drives eviction decisions.
//
// The index is the authoritative answer to "is this key a valid hit". It
// maintains an exact recency ordering: the front of the list is the least
// recently used entry, the back the most recently used. Entries that have
// never been read since insertion keep their insertion order, so eviction
// among equally stale entries is oldest-inserted first.
package index

import (
	"container/list"
	"sync"
	"time"
)

// Entry is the in-memory metadata for a single live cache entry.
type Entry struct {
	Key            string
	SizeBytes      int64
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastAccessedAt time.Time
}

func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Result describes the outcome of an Access lookup.
type Result int

const (
	// Hit means the key was present and unexpired.
	Hit Result = iota
	// Missing means the key was not present.
	Missing
	// Expired means the key was present but past its expiry; the entry
	// has been removed from the index as part of the lookup.
	Expired
)

// Index is an in-memory map of cache keys to entry metadata with an exact
// LRU recency ordering. All methods are safe for concurrent use; every
// read-then-write sequence executes under a single lock acquisition.
type Index struct {
	mu      sync.Mutex
	byKey   map[string]*list.Element
	recency *list.List // of *Entry; front = LRU, back = MRU
}

// New returns an empty index.
func New() *Index {
	return &Index{
		byKey:   make(map[string]*list.Element),
		recency: list.New(),
	}
}

// Access reports whether key is live at now.
//
// On Hit the entry is promoted to most recently used and its
// LastAccessedAt is set to now. On Expired the entry is removed from the
// index atomically with the check and returned so the caller can delete
// the corresponding blob.
func (ix *Index) Access(key string, now time.Time) (Entry, Result) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	el, ok := ix.byKey[key]
	if !ok {
		return Entry{}, Missing
	}
	entry := el.Value.(*Entry)
	if entry.expired(now) {
		ix.removeElement(el)
		return *entry, Expired
	}
	entry.LastAccessedAt = now
	ix.recency.MoveToBack(el)
	return *entry, Hit
}

// Insert adds or replaces the entry at the most recently used position.
// If the insertion pushes the live count past maxEntries, the least
// recently used entries are evicted until the count is within bound and
// returned in eviction order. maxEntries <= 0 means unbounded.
func (ix *Index) Insert(e Entry, maxEntries int) []Entry {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if el, ok := ix.byKey[e.Key]; ok {
		*el.Value.(*Entry) = e
		ix.recency.MoveToBack(el)
	} else {
		entry := e
		ix.byKey[e.Key] = ix.recency.PushBack(&entry)
	}

	if maxEntries <= 0 {
		return nil
	}
	var evicted []Entry
	for ix.recency.Len() > maxEntries {
		front := ix.recency.Front()
		evicted = append(evicted, *front.Value.(*Entry))
		ix.removeElement(front)
	}
	return evicted
}

// Remove deletes key from the index, reporting whether it was present.
func (ix *Index) Remove(key string) (Entry, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	el, ok := ix.byKey[key]
	if !ok {
		return Entry{}, false
	}
	entry := *el.Value.(*Entry)
	ix.removeElement(el)
	return entry, true
}

// RemoveIfExpired deletes key only if it is expired at now, reporting
// whether it was removed. Used by sweeps so an entry refreshed between
// candidate collection and removal is left alone.
func (ix *Index) RemoveIfExpired(key string, now time.Time) (Entry, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	el, ok := ix.byKey[key]
	if !ok {
		return Entry{}, false
	}
	entry := el.Value.(*Entry)
	if !entry.expired(now) {
		return Entry{}, false
	}
	ix.removeElement(el)
	return *entry, true
}

// ExpiredKeys returns a snapshot of the keys expired at now.
func (ix *Index) ExpiredKeys(now time.Time) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var keys []string
	for el := ix.recency.Front(); el != nil; el = el.Next() {
		if entry := el.Value.(*Entry); entry.expired(now) {
			keys = append(keys, entry.Key)
		}
	}
	return keys
}

// Keys returns a snapshot of all keys, least recently used first.
func (ix *Index) Keys() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	keys := make([]string, 0, ix.recency.Len())
	for el := ix.recency.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*Entry).Key)
	}
	return keys
}

// Contains reports whether key is present, without promoting it.
func (ix *Index) Contains(key string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	_, ok := ix.byKey[key]
	return ok
}

// Len returns the number of live entries.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return ix.recency.Len()
}

// Clear removes all entries.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.byKey = make(map[string]*list.Element)
	ix.recency.Init()
}

// removeElement must be called with the lock held.
func (ix *Index) removeElement(el *list.Element) {
	delete(ix.byKey, el.Value.(*Entry).Key)
	ix.recency.Remove(el)
}
