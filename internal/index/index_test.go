package index

import (
	"testing"
	"time"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func entry(key string, created time.Time) Entry {
	return Entry{
		Key:            key,
		SizeBytes:      64,
		CreatedAt:      created,
		ExpiresAt:      created.Add(time.Hour),
		LastAccessedAt: created,
	}
}

func TestAccessMissing(t *testing.T) {
	t.Parallel()

	ix := New()
	if _, res := ix.Access("absent", base); res != Missing {
		t.Fatalf("Access() result = %v, want Missing", res)
	}
}

func TestAccessHitPromotes(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 0)
	ix.Insert(entry("b", base), 0)

	accessAt := base.Add(time.Minute)
	got, res := ix.Access("a", accessAt)
	if res != Hit {
		t.Fatalf("Access() result = %v, want Hit", res)
	}
	if !got.LastAccessedAt.Equal(accessAt) {
		t.Fatalf("LastAccessedAt = %v, want %v", got.LastAccessedAt, accessAt)
	}

	// a is now most recently used, so b goes first under pressure.
	evicted := ix.Insert(entry("c", base), 2)
	if len(evicted) != 1 || evicted[0].Key != "b" {
		t.Fatalf("evicted = %+v, want [b]", evicted)
	}
}

func TestInsertEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 2)
	ix.Insert(entry("b", base.Add(time.Second)), 2)
	evicted := ix.Insert(entry("c", base.Add(2*time.Second)), 2)

	if len(evicted) != 1 || evicted[0].Key != "a" {
		t.Fatalf("evicted = %+v, want [a]", evicted)
	}
	if ix.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ix.Len())
	}
	if _, res := ix.Access("a", base.Add(3*time.Second)); res != Missing {
		t.Fatalf("evicted key still present")
	}
}

func TestInsertReplaceDoesNotEvict(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 2)
	ix.Insert(entry("b", base), 2)

	evicted := ix.Insert(entry("a", base.Add(time.Minute)), 2)
	if len(evicted) != 0 {
		t.Fatalf("evicted = %+v, want none", evicted)
	}
	if ix.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ix.Len())
	}

	// Replacement moved a to the most recently used end.
	keys := ix.Keys()
	if keys[len(keys)-1] != "a" {
		t.Fatalf("Keys() = %v, want a last", keys)
	}
}

func TestTieBreakIsInsertionOrder(t *testing.T) {
	t.Parallel()

	// Identical timestamps everywhere; eviction must still be
	// deterministic: earliest inserted goes first.
	ix := New()
	ix.Insert(entry("a", base), 0)
	ix.Insert(entry("b", base), 0)
	ix.Insert(entry("c", base), 0)

	evicted := ix.Insert(entry("d", base), 2)
	if len(evicted) != 2 {
		t.Fatalf("evicted %d entries, want 2", len(evicted))
	}
	if evicted[0].Key != "a" || evicted[1].Key != "b" {
		t.Fatalf("evicted = [%s %s], want [a b]", evicted[0].Key, evicted[1].Key)
	}
}

func TestAccessExpired(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 0)

	got, res := ix.Access("a", base.Add(2*time.Hour))
	if res != Expired {
		t.Fatalf("Access() result = %v, want Expired", res)
	}
	if got.Key != "a" {
		t.Fatalf("expired entry key = %s, want a", got.Key)
	}
	if ix.Len() != 0 {
		t.Fatalf("Len() after lazy expiry = %d, want 0", ix.Len())
	}
}

func TestExpiryBoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	ix := New()
	e := entry("a", base)
	ix.Insert(e, 0)

	// now == expiresAt is already expired.
	if _, res := ix.Access("a", e.ExpiresAt); res != Expired {
		t.Fatalf("Access() at expiresAt = %v, want Expired", res)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 0)

	if _, ok := ix.Remove("a"); !ok {
		t.Fatal("Remove() ok = false, want true")
	}
	if _, ok := ix.Remove("a"); ok {
		t.Fatal("second Remove() ok = true, want false")
	}
}

func TestRemoveIfExpired(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 0)

	if _, ok := ix.RemoveIfExpired("a", base.Add(time.Minute)); ok {
		t.Fatal("RemoveIfExpired() removed a live entry")
	}
	if _, ok := ix.RemoveIfExpired("a", base.Add(2*time.Hour)); !ok {
		t.Fatal("RemoveIfExpired() ok = false for expired entry")
	}
	if ix.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", ix.Len())
	}
}

func TestExpiredKeys(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("old", base), 0)
	ix.Insert(entry("fresh", base.Add(30*time.Minute)), 0)

	keys := ix.ExpiredKeys(base.Add(90 * time.Minute))
	if len(keys) != 1 || keys[0] != "old" {
		t.Fatalf("ExpiredKeys() = %v, want [old]", keys)
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 0)
	ix.Insert(entry("b", base), 0)

	// Contains must not promote.
	if !ix.Contains("a") {
		t.Fatal("Contains(a) = false, want true")
	}
	evicted := ix.Insert(entry("c", base), 2)
	if len(evicted) != 1 || evicted[0].Key != "a" {
		t.Fatalf("evicted = %+v, want [a] (Contains must not refresh recency)", evicted)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	ix := New()
	ix.Insert(entry("a", base), 0)
	ix.Insert(entry("b", base), 0)

	ix.Clear()
	if ix.Len() != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", ix.Len())
	}
	ix.Clear()
}
