package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_, found, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("null cache must never report a hit")
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if err := c.Set(ctx, "tree:abc", []byte("svg bytes"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, found, err := c.Get(ctx, "tree:abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("got miss, want hit")
	}
	if string(data) != "svg bytes" {
		t.Errorf("got %q, want %q", data, "svg bytes")
	}

	if err := c.Delete(ctx, "tree:abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, "tree:abc"); found {
		t.Error("got hit after delete, want miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("got hit after expiry, want miss")
	}
}

func TestKeyIsStable(t *testing.T) {
	a := Key("layout", "tree", 3)
	b := Key("layout", "tree", 3)
	if a != b {
		t.Errorf("identical parts must hash identically: %q != %q", a, b)
	}
	if c := Key("layout", "tree", 4); c == a {
		t.Error("different parts must produce different keys")
	}
}
