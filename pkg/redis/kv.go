package redis

import (
	"context"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/kvstore"
)

// KVStore adapts Client to kvstore.Store, namespacing every key under kv.
type KVStore struct {
	client *Client
}

var _ kvstore.Store = (*KVStore)(nil)

// NewKVStore wraps the client for document storage.
func NewKVStore(client *Client) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.client.KVKey(key))
	if IsNil(err) {
		return "", kvstore.ErrNotFound
	}
	return val, err
}

func (s *KVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.client.KVKey(key), value, ttl)
}

func (s *KVStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = s.client.KVKey(key)
	}
	return s.client.Del(ctx, namespaced...)
}

func (s *KVStore) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return s.client.SAdd(ctx, s.client.KVKey(key), members...)
}

func (s *KVStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, s.client.KVKey(key))
}

func (s *KVStore) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	return s.client.SRem(ctx, s.client.KVKey(key), members...)
}
