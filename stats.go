package ocrcache

import "time"

// Stats is a read-only snapshot of cache state, suitable for exposing
// through monitoring endpoints. Taking a snapshot never mutates the cache.
type Stats struct {
	Enabled        bool          `json:"enabled"`
	Items          int           `json:"items"`
	MaxEntries     int           `json:"maxEntries"`
	TTL            time.Duration `json:"ttl"`
	TotalDiskBytes int64         `json:"totalDiskBytes"`
	Dir            string        `json:"dir"`

	// Counters accumulated since construction.
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
}
