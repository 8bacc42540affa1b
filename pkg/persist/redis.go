package persist

import (
	"context"
	"errors"
	"sync"
	"time"
)

// RedisClient is the subset of a Redis client used by RedisBackend. It
// matches the method set of github.com/redis/go-redis/v9 through small
// adapters, so this package does not depend on a Redis driver.
type RedisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) RedisStatusCmd
	Get(ctx context.Context, key string) RedisStringCmd
	Del(ctx context.Context, keys ...string) RedisIntCmd
}

// RedisStatusCmd is the result of a Redis SET.
type RedisStatusCmd interface {
	Err() error
}

// RedisStringCmd is the result of a Redis GET.
type RedisStringCmd interface {
	Bytes() ([]byte, error)
	Err() error
}

// RedisIntCmd is the result of a Redis DEL.
type RedisIntCmd interface {
	Err() error
}

// ErrRedisNil is the error a RedisStringCmd reports for a missing key. It
// should match redis.Nil from go-redis.
var ErrRedisNil = errors.New("redis: nil")

// RedisBackend stores snapshots as Redis strings under prefix+key.
type RedisBackend struct {
	client RedisClient
	prefix string
	ttl    time.Duration

	mu     sync.RWMutex
	closed bool
}

// RedisOption configures a RedisBackend.
type RedisOption func(*RedisBackend)

// WithRedisPrefix sets the key prefix.
// Default: "depot:snapshot:".
func WithRedisPrefix(prefix string) RedisOption {
	return func(b *RedisBackend) {
		b.prefix = prefix
	}
}

// WithRedisTTL makes saved snapshots expire. Zero keeps them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(b *RedisBackend) {
		b.ttl = ttl
	}
}

// NewRedisBackend creates a Redis-backed snapshot backend.
func NewRedisBackend(client RedisClient, opts ...RedisOption) *RedisBackend {
	b := &RedisBackend{client: client, prefix: "depot:snapshot:"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load implements Backend.
func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrBackendClosed
	}
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, ErrRedisNil) || err.Error() == ErrRedisNil.Error() {
			return nil, nil
		}
		return nil, backendError("load", key, err)
	}
	return data, nil
}

// Save implements Backend.
func (b *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBackendClosed
	}
	if err := b.client.Set(ctx, b.prefix+key, data, b.ttl).Err(); err != nil {
		return backendError("save", key, err)
	}
	return nil
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBackendClosed
	}
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return backendError("delete", key, err)
	}
	return nil
}

// Close marks the backend closed. The client is not closed, as it may be
// shared with other components.
func (b *RedisBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
