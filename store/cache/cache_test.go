package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", 42)
	got, ok := c.Get(ctx, "a")
	if !ok || got.(int) != 42 {
		t.Fatalf("Get(a) = %v, %v; want 42, true", got, ok)
	}

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("Get(missing) returned ok")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.SetWithTTL("a", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("expired entry still visible")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", 1)
	c.Delete(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("deleted entry still visible")
	}
}

func TestCacheMaxItems(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute, CleanupInterval: time.Minute, MaxItems: 3})
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), i)
	}

	count := 0
	for i := 0; i < 5; i++ {
		if _, ok := c.Get(ctx, fmt.Sprintf("k%d", i)); ok {
			count++
		}
	}
	if count != 3 {
		t.Fatalf("cache holds %d entries; want 3", count)
	}
}
