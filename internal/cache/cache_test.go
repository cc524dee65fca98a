package cache

import "testing"

func TestPutUpdatesExistingEntryWithoutGrowingSize(t *testing.T) {
	c := NewLRUCache[string, int](2)

	c.Put("alpha", 1)
	c.Put("beta", 2)
	c.Put("alpha", 3)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if v, ok := c.Get("alpha"); !ok || v != 3 {
		t.Fatalf("expected updated alpha, got %d, %v", v, ok)
	}
	if v, ok := c.Get("beta"); !ok || v != 2 {
		t.Fatalf("expected beta to remain in cache, got %d, %v", v, ok)
	}
}

func TestPutEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string, string](2)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Get("a")
	c.Put("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("expected %s to remain cached", key)
		}
	}
}

func TestRemoveAndPurge(t *testing.T) {
	c := NewLRUCache[int, []byte](0)
	c.Put(1, []byte{1})
	if c.Len() != 1 {
		t.Fatalf("expected minimum capacity of one, got %d entries", c.Len())
	}

	c.Remove(1)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected key to be removed")
	}
	c.Remove(42)

	c.Put(2, nil)
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge, got %d", c.Len())
	}
	c.Put(3, []byte{3})
	if _, ok := c.Get(3); !ok {
		t.Fatalf("expected cache to be usable after purge")
	}
}
