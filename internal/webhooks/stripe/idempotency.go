package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/redis"
)

// IdempotencyGuard remembers which Stripe event ids were already applied so a
// redelivered checkout.session.completed does not create a second order.
// The stored value is the UTC time the event was first claimed.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
	now   func() time.Time
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	case strings.TrimSpace(scope) == "":
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope, now: time.Now}, nil
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(g.scope, eventID), nil
}

// CheckAndMark claims eventID and reports true when an earlier delivery already holds the claim.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	claimed, err := g.store.SetNX(ctx, key, g.now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("claim stripe event %s: %w", eventID, err)
	}
	return !claimed, nil
}

// Delete releases a claim so Stripe's retry of a failed delivery is processed again.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

// FirstSeen returns when eventID was claimed, or false when no claim exists.
func (g *IdempotencyGuard) FirstSeen(ctx context.Context, eventID string) (time.Time, bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return time.Time{}, false, err
	}
	raw, err := g.store.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	seen, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, true, nil
	}
	return seen, true, nil
}
