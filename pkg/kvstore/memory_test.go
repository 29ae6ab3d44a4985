package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryGetSetDel(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "a", "1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := store.Get(ctx, "a"); err != nil || got != "1" {
		t.Fatalf("expected 1, got %q err=%v", got, err)
	}
	if err := store.Del(ctx, "a"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "ttl", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "ttl"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
}

func TestMemorySets(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.SAdd(ctx, "idx", "b", "a", "b"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	members, err := store.SMembers(ctx, "idx")
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 2 || members[0] != "a" || members[1] != "b" {
		t.Fatalf("unexpected members %v", members)
	}
	if err := store.SRem(ctx, "idx", "a"); err != nil {
		t.Fatalf("srem: %v", err)
	}
	members, _ = store.SMembers(ctx, "idx")
	if len(members) != 1 || members[0] != "b" {
		t.Fatalf("unexpected members after srem %v", members)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	type doc struct {
		Name string `json:"name"`
	}
	var out doc
	found, err := GetJSON(ctx, store, "doc", &out)
	if err != nil || found {
		t.Fatalf("expected missing doc, found=%v err=%v", found, err)
	}
	if err := SetJSON(ctx, store, "doc", doc{Name: "x"}, 0); err != nil {
		t.Fatalf("set json: %v", err)
	}
	found, err = GetJSON(ctx, store, "doc", &out)
	if err != nil || !found || out.Name != "x" {
		t.Fatalf("unexpected doc %+v found=%v err=%v", out, found, err)
	}
}
