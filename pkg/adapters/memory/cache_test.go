package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/civicflow/pkg/adapters/memory"
	"github.com/aretw0/civicflow/pkg/ports/tests"
)

func TestMemoryCache_Contract(t *testing.T) {
	tests.TranslationCacheContractTest(t, memory.NewCache())
}

func TestMemoryCache_TTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := memory.NewCache(memory.WithTTL(time.Minute))
	cache.SetClock(func() time.Time { return now })
	ctx := context.Background()

	if err := cache.Set(ctx, "q", "SELECT 1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "q"); !ok {
		t.Fatal("Expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "q"); ok {
		t.Error("Expected miss after expiry")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected expired entry to be evicted, got %d", cache.Len())
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := memory.NewCache()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Set(ctx, "shared", "SELECT 1")
			_, _, _ = cache.Get(ctx, "shared")
		}()
	}
	wg.Wait()
	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", cache.Len())
	}
}
