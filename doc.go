// Package ocrcache provides a bounded, persistent result cache for
// document OCR and table-extraction pipelines.
//
// OCR is expensive; re-running an unchanged document with unchanged
// settings is pure waste. This package memoizes engine output on local
// disk, keyed by a content digest of the input document combined with the
// canonicalized processing configuration, so any change to either the
// document or the effective settings is a guaranteed miss rather than a
// stale hit.
//
// Entries are bounded by count with LRU eviction, expire a fixed TTL
// after insertion, and survive process restarts: the in-memory index is
// rebuilt from per-entry metadata persisted alongside each blob. Blobs
// are written with a temp-file-then-rename protocol and stored
// zstd-compressed.
//
// # Quick Start
//
//	cache, err := ocrcache.New("/var/cache/ocr",
//	    ocrcache.WithMaxEntries(500),
//	    ocrcache.WithTTL(12*time.Hour),
//	)
//	if err != nil {
//	    return err
//	}
//
//	hash, err := ocrcache.HashFile(uploadPath)
//	if err != nil {
//	    return err
//	}
//	cfg := ocrcache.Config{"lang": "en", "detect_tables": true}
//
//	if artifact, ok := cache.Get(hash, cfg); ok {
//	    return serve(artifact)
//	}
//	artifact := runOCR(uploadPath, cfg) // the expensive part
//	if err := cache.Set(hash, cfg, artifact); err != nil {
//	    return err // input error: caller bug, result still usable
//	}
//
// The cache never blocks on or participates in the OCR computation
// itself; miss-then-compute-then-set is entirely the caller's loop.
//
// # Failure Semantics
//
// The cache is an accelerator, never a point of failure. Storage problems
// degrade Get to a constant miss and Set to a logged no-op; corrupt or
// half-written entries are evicted on discovery and reported as misses.
// The only errors surfaced to callers are input errors on Set, which
// indicate a bug in the calling code.
//
// The package assumes a single cache instance per directory; running
// multiple processes against the same directory is unsupported.
package ocrcache
