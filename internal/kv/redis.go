package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a Redis server. All keys live under a prefix.
type Redis struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedis connects to the server at url (redis://[user:pass@]host:port/db)
// and verifies the connection.
func NewRedis(ctx context.Context, url, keyPrefix string) (*Redis, error) {
	if url == "" {
		return nil, errors.New("redis url is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	r := &Redis{client: redis.NewClient(opts), keyPrefix: keyPrefix}
	if err := r.Ping(ctx); err != nil {
		_ = r.client.Close()
		return nil, err
	}
	return r, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, keyPrefix string) *Redis {
	return &Redis{client: client, keyPrefix: keyPrefix}
}

func (r *Redis) key(k string) string { return r.keyPrefix + k }

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (r *Redis) Close() error { return r.client.Close() }
