// Command cachestat inspects and maintains an OCR result cache directory.
//
// Usage:
//
//	cachestat -dir /var/cache/ocr            # print stats as JSON
//	cachestat -dir /var/cache/ocr -sweep     # expire and reclaim, then print stats
//	cachestat -dir /var/cache/ocr -clear     # delete all entries
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/meigma/ocrcache"
)

func main() {
	var (
		dir        = flag.String("dir", "", "cache directory (required)")
		maxEntries = flag.Int("max-entries", 100, "entry bound used when opening the cache")
		ttl        = flag.Duration("ttl", time.Hour, "entry TTL used when opening the cache")
		sweep      = flag.Bool("sweep", false, "run one expiry/consistency sweep before printing stats")
		clear      = flag.Bool("clear", false, "delete all cached entries")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "cachestat: -dir is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*dir, *maxEntries, *ttl, *sweep, *clear); err != nil {
		fmt.Fprintf(os.Stderr, "cachestat: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string, maxEntries int, ttl time.Duration, sweep, clear bool) error {
	cache, err := ocrcache.New(dir,
		ocrcache.WithMaxEntries(maxEntries),
		ocrcache.WithTTL(ttl),
	)
	if err != nil {
		return err
	}

	if clear {
		if err := cache.Clear(); err != nil {
			return err
		}
	}
	if sweep {
		removed := cache.Sweep(context.Background())
		fmt.Fprintf(os.Stderr, "swept %d entries\n", removed)
	}

	out, err := json.MarshalIndent(cache.Stats(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
