package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/cache"
)

func testResult(text string) *api.Result {
	return &api.Result{
		ID:           api.NewGenerationID(),
		Model:        "test-model",
		Text:         text,
		FinishReason: api.FinishStop,
		Usage:        api.Usage{InputTokens: 5, OutputTokens: 3, TotalTokens: 8},
	}
}

func TestSetAndGet(t *testing.T) {
	s := New(0, 0)
	ctx := context.Background()

	if err := s.Set(ctx, "k1", testResult("hello")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("Text = %q, want %q", got.Text, "hello")
	}
}

func TestGetMiss(t *testing.T) {
	s := New(0, 0)
	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestSetReplacesExisting(t *testing.T) {
	s := New(0, 0)
	ctx := context.Background()

	s.Set(ctx, "k1", testResult("old"))
	s.Set(ctx, "k1", testResult("new"))

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Text != "new" {
		t.Errorf("Text = %q, want %q", got.Text, "new")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	s := New(2, 0)
	ctx := context.Background()

	s.Set(ctx, "k1", testResult("one"))
	s.Set(ctx, "k2", testResult("two"))
	s.Set(ctx, "k3", testResult("three"))

	if _, err := s.Get(ctx, "k1"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Error("k1 should have been evicted")
	}
	if _, err := s.Get(ctx, "k2"); err != nil {
		t.Errorf("k2 should survive: %v", err)
	}
	if _, err := s.Get(ctx, "k3"); err != nil {
		t.Errorf("k3 should survive: %v", err)
	}
}

func TestGetPromotesEntry(t *testing.T) {
	s := New(2, 0)
	ctx := context.Background()

	s.Set(ctx, "k1", testResult("one"))
	s.Set(ctx, "k2", testResult("two"))

	// Touch k1 so k2 becomes the eviction candidate.
	if _, err := s.Get(ctx, "k1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	s.Set(ctx, "k3", testResult("three"))

	if _, err := s.Get(ctx, "k1"); err != nil {
		t.Errorf("recently used k1 should survive: %v", err)
	}
	if _, err := s.Get(ctx, "k2"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Error("k2 should have been evicted")
	}
}

func TestTTLExpiry(t *testing.T) {
	s := New(0, time.Minute)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set(ctx, "k1", testResult("hello"))

	s.now = func() time.Time { return base.Add(59 * time.Second) }
	if _, err := s.Get(ctx, "k1"); err != nil {
		t.Fatalf("entry expired early: %v", err)
	}

	s.now = func() time.Time { return base.Add(61 * time.Second) }
	if _, err := s.Get(ctx, "k1"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after TTL, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired entry still held, Len = %d", s.Len())
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New(0, 0)
	ctx := context.Background()

	s.Set(ctx, "k1", testResult("hello"))
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "k1"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}
