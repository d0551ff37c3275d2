package tests

import (
	"context"
	"testing"

	"github.com/aretw0/civicflow/pkg/ports"
)

// TranslationCacheContractTest is a reusable test suite that verifies if an adapter complies with ports.TranslationCache.
func TranslationCacheContractTest(t *testing.T, cache ports.TranslationCache) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Miss", func(t *testing.T) {
		_, ok, err := cache.Get(ctx, "how many potholes were reported?")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected miss for unknown question")
		}
	})

	t.Run("Set_Then_Get", func(t *testing.T) {
		question := "burglaries in 2023"
		sql := "SELECT * FROM incidents WHERE category = 'BURGLARY' LIMIT 100"
		if err := cache.Set(ctx, question, sql); err != nil {
			t.Fatalf("unexpected error setting: %v", err)
		}
		got, ok, err := cache.Get(ctx, question)
		if err != nil {
			t.Fatalf("unexpected error getting: %v", err)
		}
		if !ok {
			t.Fatal("expected hit after Set")
		}
		if got != sql {
			t.Errorf("sql mismatch. got %q, want %q", got, sql)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		question := "noise complaints"
		_ = cache.Set(ctx, question, "SELECT 1")
		_ = cache.Set(ctx, question, "SELECT 2")
		got, _, err := cache.Get(ctx, question)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "SELECT 2" {
			t.Errorf("expected latest value, got %q", got)
		}
	})

	t.Run("Distinct_Questions", func(t *testing.T) {
		_ = cache.Set(ctx, "question a", "SELECT 'a'")
		_ = cache.Set(ctx, "question b", "SELECT 'b'")
		a, _, _ := cache.Get(ctx, "question a")
		b, _, _ := cache.Get(ctx, "question b")
		if a == b {
			t.Errorf("expected distinct entries, both were %q", a)
		}
	})
}
