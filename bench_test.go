package ocrcache

import (
	"fmt"
	"testing"
	"time"
)

func benchCache(b *testing.B) *Cache {
	b.Helper()
	c, err := New(b.TempDir(), WithMaxEntries(1000), WithTTL(time.Hour))
	if err != nil {
		b.Fatal(err)
	}
	return c
}

func BenchmarkDeriveKey(b *testing.B) {
	hash := HashBytes([]byte("benchmark document"))
	cfg := Config{
		"lang":                 "en",
		"detect_tables":        true,
		"text_det_thresh":      0.3,
		"table_conf_threshold": 0.5,
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := deriveKey(hash, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSet(b *testing.B) {
	c := benchCache(b)
	artifact := make([]byte, 16<<10)
	for i := range artifact {
		artifact[i] = byte(i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hash := HashBytes([]byte(fmt.Sprintf("doc-%d", i%1000)))
		if err := c.Set(hash, enConfig, artifact); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetHit(b *testing.B) {
	c := benchCache(b)
	hash := HashBytes([]byte("hot document"))
	artifact := make([]byte, 16<<10)
	if err := c.Set(hash, enConfig, artifact); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := c.Get(hash, enConfig); !ok {
			b.Fatal("unexpected miss")
		}
	}
}

func BenchmarkGetMiss(b *testing.B) {
	c := benchCache(b)
	hash := HashBytes([]byte("absent document"))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, ok := c.Get(hash, enConfig); ok {
			b.Fatal("unexpected hit")
		}
	}
}
