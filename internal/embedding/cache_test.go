package embedding

import "testing"

func TestCache_GetSet(t *testing.T) {
	c := NewCache(2)
	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}
	c.Set("a", []float32{1})
	if v, ok := c.Get("a"); !ok || v[0] != 1 {
		t.Error("expected cached value for a")
	}
}

func TestCache_Eviction(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a") // refresh a so b is oldest
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive (recently used)")
	}
}
