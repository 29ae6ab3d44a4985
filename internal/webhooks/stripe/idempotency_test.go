package stripewebhook

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeIdempotencyStore struct {
	data map[string]string
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestIdempotencyGuardCheckAndMark(t *testing.T) {
	store := &fakeIdempotencyStore{data: map[string]string{}}
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil || seen {
		t.Fatalf("expected first delivery unseen, got seen=%v err=%v", seen, err)
	}
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil || !seen {
		t.Fatalf("expected replay seen, got seen=%v err=%v", seen, err)
	}
	if err := guard.Delete(ctx, "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, _ = guard.CheckAndMark(ctx, "evt_1")
	if seen {
		t.Fatal("expected key cleared after delete")
	}
	if _, err := guard.CheckAndMark(ctx, ""); err == nil {
		t.Fatal("expected empty event id rejected")
	}
}

func TestIdempotencyGuardRecordsFirstSeen(t *testing.T) {
	store := &fakeIdempotencyStore{data: map[string]string{}}
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	claimedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return claimedAt }
	ctx := context.Background()

	if _, ok, err := guard.FirstSeen(ctx, "evt_2"); err != nil || ok {
		t.Fatalf("expected no claim yet, got ok=%v err=%v", ok, err)
	}
	if _, err := guard.CheckAndMark(ctx, "evt_2"); err != nil {
		t.Fatalf("check: %v", err)
	}
	seen, ok, err := guard.FirstSeen(ctx, "evt_2")
	if err != nil || !ok || !seen.Equal(claimedAt) {
		t.Fatalf("expected first seen %v, got %v ok=%v err=%v", claimedAt, seen, ok, err)
	}
	if store.data["stripe:evt_2"] != "2025-03-01T12:00:00Z" {
		t.Fatalf("unexpected stored value %q", store.data["stripe:evt_2"])
	}
}

func TestNewIdempotencyGuardValidates(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Hour, "stripe"); err == nil {
		t.Fatal("expected nil store rejected")
	}
	store := &fakeIdempotencyStore{data: map[string]string{}}
	if _, err := NewIdempotencyGuard(store, -time.Second, "stripe"); err == nil {
		t.Fatal("expected negative ttl rejected")
	}
	if _, err := NewIdempotencyGuard(store, time.Hour, "  "); err == nil {
		t.Fatal("expected empty scope rejected")
	}
}
