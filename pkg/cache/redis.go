// Package cache holds the Redis client and the todo item read cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client names reported to Redis (CLIENT LIST) by each binary.
const (
	ClientAPI    = "todoapp-api"
	ClientWorker = "todoapp-worker"
)

const connectTimeout = 2 * time.Second

// RedisClient is the Redis connection shared by the item cache and the
// session store.
type RedisClient struct {
	client *redis.Client
	name   string
}

// NewRedisClient parses url, names the connection and verifies it with a 2s
// deadline. The api serves cache reads and sessions from many handlers, so it
// gets a larger pool than the worker, whose subscribers write sequentially.
func NewRedisClient(ctx context.Context, url, name string) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	applyPoolSettings(opts, name)

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: connect %s: %w", name, err)
	}

	return &RedisClient{client: rdb, name: name}, nil
}

func applyPoolSettings(opts *redis.Options, name string) {
	opts.ClientName = name
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.PoolTimeout = 2 * time.Second

	switch name {
	case ClientWorker:
		opts.PoolSize = 4
		opts.MinIdleConns = 1
	default:
		opts.PoolSize = 20
		opts.MinIdleConns = 4
	}
}

// Ping reports whether Redis answers.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping %s: %w", r.name, err)
	}
	return nil
}

// Close releases the pool. Safe on a zero RedisClient.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("cache: close %s: %w", r.name, err)
	}
	return nil
}

// Client exposes the go-redis client for the session store.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
