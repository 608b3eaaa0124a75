package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "quizmaster:"

// KVStore is a Redis-backed implementation of badge.KVStore. Badge records
// never expire; the ledger grows monotonically across attempts.
type KVStore struct {
	client *redis.Client
}

func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, keyPrefix+key, value, 0).Err()
}
