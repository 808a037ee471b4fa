package access

import (
	"fmt"
	"testing"
	"time"
)

func TestRoleCache_GetSet(t *testing.T) {
	cache := NewRoleCache(30*time.Second, 100)

	if _, ok := cache.Get("amina"); ok {
		t.Fatal("Get() on an empty cache should miss")
	}

	cache.Set("amina", RoleTeacher)
	role, ok := cache.Get("amina")
	if !ok {
		t.Fatal("Get() should hit right after Set()")
	}
	if role != RoleTeacher {
		t.Errorf("Get() = %v, want %v", role, RoleTeacher)
	}

	// overwrite
	cache.Set("amina", RoleAdmin)
	if role, _ = cache.Get("amina"); role != RoleAdmin {
		t.Errorf("Get() after overwrite = %v, want %v", role, RoleAdmin)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestRoleCache_TTL(t *testing.T) {
	cache := NewRoleCache(30*time.Second, 100)

	now := time.Now()
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	cache.Set("moise", RoleStudent)

	// still fresh just before the TTL
	NowFunc = func() time.Time { return now.Add(30*time.Second - time.Millisecond) }
	if _, ok := cache.Get("moise"); !ok {
		t.Error("Get() should hit just before the TTL")
	}

	// expired at the TTL; entry behaves as absent but is not deleted
	NowFunc = func() time.Time { return now.Add(30 * time.Second) }
	if _, ok := cache.Get("moise"); ok {
		t.Error("Get() should miss once the TTL has elapsed")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1: Get() must not evict", cache.Len())
	}

	// a fresh Set resets the clock
	cache.Set("moise", RoleStudent)
	if _, ok := cache.Get("moise"); !ok {
		t.Error("Get() should hit after re-Set()")
	}
}

// 101 identities exceed the high-water mark with all but one expired; the
// next Set sweeps and leaves only unexpired entries.
func TestRoleCache_SweepAtHighWater(t *testing.T) {
	cache := NewRoleCache(30*time.Second, 100)

	now := time.Now()
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	for i := 0; i < 100; i++ {
		cache.Set(Identity(fmt.Sprintf("stale-%03d", i)), RoleStudent)
	}

	// one entry stays young
	NowFunc = func() time.Time { return now.Add(29 * time.Second) }
	cache.Set("fresh", RoleTeacher)
	if cache.Len() != 101 {
		t.Fatalf("Len() = %d, want 101", cache.Len())
	}

	// past the stale entries' TTL now; the next Set sweeps them all
	NowFunc = func() time.Time { return now.Add(31 * time.Second) }
	cache.Set("newcomer", RoleAdmin)

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after sweep", cache.Len())
	}
	if _, ok := cache.Get("fresh"); !ok {
		t.Error("unexpired entry should survive the sweep")
	}
	if _, ok := cache.Get("newcomer"); !ok {
		t.Error("the entry just set should survive the sweep")
	}
	if _, ok := cache.Get("stale-000"); ok {
		t.Error("expired entries should be gone after the sweep")
	}
}

// below the high-water mark, Set never sweeps: expired entries linger.
func TestRoleCache_NoSweepBelowHighWater(t *testing.T) {
	cache := NewRoleCache(30*time.Second, 100)

	now := time.Now()
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	cache.Set("old", RoleStudent)

	NowFunc = func() time.Time { return now.Add(time.Minute) }
	cache.Set("new", RoleTeacher)

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2: no sweep below the high-water mark", cache.Len())
	}
}

func TestRoleCache_Clear(t *testing.T) {
	cache := NewRoleCache(30*time.Second, 100)
	cache.Set("a", RoleAdmin)
	cache.Set("b", RoleTeacher)
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Clear()", cache.Len())
	}
}
