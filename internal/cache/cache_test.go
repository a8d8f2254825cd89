package cache

import (
	"testing"
	"time"
)

func TestBox_HitWithinTTL(t *testing.T) {
	b := NewBox[int](time.Minute)

	if _, ok := b.Get(); ok {
		t.Fatal("expected miss on empty box")
	}

	b.Put(42)
	v, ok := b.Get()
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if v != 42 {
		t.Errorf("expected 42, got %d", v)
	}
}

func TestBox_ExpiresAfterTTL(t *testing.T) {
	b := NewBox[string](20 * time.Millisecond)
	b.Put("stale")

	time.Sleep(30 * time.Millisecond)

	if _, ok := b.Get(); ok {
		t.Fatal("expected miss after TTL elapsed")
	}
}

func TestBox_PutReplacesWholesale(t *testing.T) {
	b := NewBox[[]int](time.Minute)
	b.Put([]int{1, 2, 3})
	b.Put([]int{9})

	v, ok := b.Get()
	if !ok {
		t.Fatal("expected hit")
	}
	if len(v) != 1 || v[0] != 9 {
		t.Errorf("expected replaced value [9], got %v", v)
	}
}

func TestKeyed_IsolatesKeys(t *testing.T) {
	k := NewKeyed[string](time.Minute)
	k.Put("15m", "candles-15m")

	if _, ok := k.Get("1h"); ok {
		t.Fatal("expected miss for unrelated key")
	}

	v, ok := k.Get("15m")
	if !ok {
		t.Fatal("expected hit for stored key")
	}
	if v != "candles-15m" {
		t.Errorf("unexpected value %q", v)
	}
}

func TestKeyed_ExpiresPerKey(t *testing.T) {
	k := NewKeyed[int](20 * time.Millisecond)
	k.Put("a", 1)

	time.Sleep(30 * time.Millisecond)
	k.Put("b", 2)

	if _, ok := k.Get("a"); ok {
		t.Fatal("expected key a to be expired")
	}
	if v, ok := k.Get("b"); !ok || v != 2 {
		t.Fatalf("expected fresh key b = 2, got %d (hit=%v)", v, ok)
	}
}
