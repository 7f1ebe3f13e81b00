package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// pending marks a claimed key whose order is not stored yet.
const pending = "pending"

// DefaultIdempotencyTTL is how long a key keeps replaying its order.
const DefaultIdempotencyTTL = 24 * time.Hour

// PendingTTL bounds how long a claim without an order blocks its key.
const PendingTTL = time.Minute

// RedisIdempotencyStore keeps idempotency keys in Redis.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient creates a Redis client for addr.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// NewRedisIdempotencyStore creates a RedisIdempotencyStore whose keys expire after ttl.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// Claim reserves key with SETNX. The claim lapses after PendingTTL unless Remember stores an order.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	ttl := PendingTTL
	if s.ttl < ttl {
		ttl = s.ttl
	}
	return s.client.SetNX(ctx, key, pending, ttl).Result()
}

// Remember stores the order id under key for the full TTL.
func (s *RedisIdempotencyStore) Remember(ctx context.Context, key, orderID string) error {
	return s.client.Set(ctx, key, orderID, s.ttl).Err()
}

// Recall returns the order id under key, or "" when the key is unknown or still pending.
func (s *RedisIdempotencyStore) Recall(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if value == pending {
		return "", nil
	}
	return value, nil
}

// Release deletes key.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
