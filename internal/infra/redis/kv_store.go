package redis

import (
	"context"
	"errors"
	"time"

	"dutch-verb-trainer/internal/domain"
	"github.com/redis/go-redis/v9"
)

// KVStore is a Redis implementation of app.KeyValueStore. Every write
// refreshes the key's TTL so abandoned sessions eventually expire; a zero
// TTL keeps keys forever.
type KVStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewKVStore(client *redis.Client, ttl time.Duration) *KVStore {
	return &KVStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrKeyNotFound
	}
	return value, err
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
