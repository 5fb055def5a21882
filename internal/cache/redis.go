// Package cache memoizes projection results in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL applies when a Memo is created with a zero TTL.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "furrow:projection:"

// NewRedis creates a Redis client. It does not dial; call Ping.
func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})
}

// Memo stores encoded projection results keyed by scenario fingerprint.
type Memo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMemo wraps a Redis client.
func NewMemo(client *redis.Client, ttl time.Duration) *Memo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memo{client: client, ttl: ttl}
}

// Ping tests the Redis connection.
func (m *Memo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get returns the stored value for key. A miss is (nil, false, nil).
func (m *Memo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := m.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Put stores value under key with the memo's TTL.
func (m *Memo) Put(ctx context.Context, key string, value []byte) error {
	if err := m.client.Set(ctx, keyPrefix+key, value, m.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops a stored value.
func (m *Memo) Invalidate(ctx context.Context, key string) error {
	if err := m.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (m *Memo) Close() error {
	return m.client.Close()
}
