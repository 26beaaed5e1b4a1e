package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := store.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "1" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	_, ok, err := NewMemory().Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemory().WithClock(func() time.Time { return now })

	if err := store.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	now = now.Add(2 * time.Minute)
	_, ok, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected expired entry to miss")
	}
	if store.Len() != 0 {
		t.Fatalf("expected lazy eviction, got %d entries", store.Len())
	}
}

func TestMemoryZeroTTLNotStored(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Fatal("zero-TTL entry should not be stored")
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_ = store.Set(ctx, "a", []byte("1"), time.Minute)
	_ = store.Set(ctx, "b", []byte("2"), time.Minute)

	if err := store.Delete(ctx, "a", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Fatal("expected a deleted")
	}
	if _, ok, _ := store.Get(ctx, "b"); !ok {
		t.Fatal("expected b kept")
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_ = store.Set(ctx, "cart:u1:line:p1", []byte("1"), time.Minute)
	_ = store.Set(ctx, "cart:u1:line:p2", []byte("2"), time.Minute)
	_ = store.Set(ctx, "cart:u2:line:p1", []byte("3"), time.Minute)

	if err := store.DeletePrefix(ctx, "cart:u1:line:"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected only other user's key to survive, got %d", store.Len())
	}
	if _, ok, _ := store.Get(ctx, "cart:u2:line:p1"); !ok {
		t.Fatal("expected other user's key untouched")
	}
}
