package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestShardedGetSet(t *testing.T) {
	c := NewSharded[string, int](4, StringHasher)

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("Get on empty cache reported a hit")
	}

	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = (%d, %v), want (2, true)", v, ok)
	}

	c.Set("a", 10) // update in place
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after update = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestShardedEviction(t *testing.T) {
	// A hasher that maps everything to one shard forces LRU pressure.
	c := NewSharded[int, int](2, func(int) uint64 { return 0 })

	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1) // refresh 1; 2 becomes the eviction candidate
	c.Set(3, 3)

	if _, ok := c.Get(2); ok {
		t.Errorf("least recently used entry survived eviction")
	}
	if _, ok := c.Get(1); !ok {
		t.Errorf("recently used entry was evicted")
	}
	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", s.Evictions)
	}
}

func TestShardedDelete(t *testing.T) {
	c := NewSharded[string, string](0, StringHasher)
	c.Set("k", "v")
	if !c.Delete("k") {
		t.Errorf("Delete existing key = false")
	}
	if c.Delete("k") {
		t.Errorf("Delete missing key = true")
	}
	if _, ok := c.Get("k"); ok {
		t.Errorf("deleted key still retrievable")
	}
}

func TestShardedGetOrCreate(t *testing.T) {
	c := NewSharded[float64, []float32](8, Float64Hasher)
	calls := 0
	create := func() []float32 {
		calls++
		return []float32{1, 2, 3}
	}
	c.GetOrCreate(2.5, create)
	c.GetOrCreate(2.5, create)
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestShardedClear(t *testing.T) {
	c := NewSharded[string, int](4, StringHasher)
	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestShardedConcurrentAccess(t *testing.T) {
	c := NewSharded[string, int](16, StringHasher)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%32)
				c.Set(key, g*1000+i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
}
