package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "portal:"

// KVStore implements ports.KVStore on Redis. Values never expire; they live
// until deleted, like browser local storage.
// Key format: <prefix><key>
type KVStore struct {
	client *redis.Client
	prefix string
}

// NewKVStore wraps client. An empty prefix falls back to "portal:".
func NewKVStore(client *redis.Client, prefix string) *KVStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &KVStore{client: client, prefix: prefix}
}

// Get returns ok=false for a missing key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys one at a time, mirroring the per-key atomicity of the
// store. Missing keys are ignored.
func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := s.client.Del(ctx, s.key(k)).Err(); err != nil {
			return fmt.Errorf("kv delete %s: %w", k, err)
		}
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *KVStore) key(k string) string {
	return s.prefix + k
}
