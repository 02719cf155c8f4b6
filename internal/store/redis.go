package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "profile:"

// RedisStore keeps each profile as a JSON string.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (s *RedisStore) Save(ctx context.Context, key string, p model.Profile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(key), doc, 0).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*model.Profile, error) {
	doc, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	var p model.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %q: %w", key, err)
	}
	return &p, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, redisKey(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close(context.Context) error {
	return s.client.Close()
}
