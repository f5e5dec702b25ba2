package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentCache keeps serialized documents in redis keyed by document id.
// A cache miss is not an error: Get returns an empty string for it.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func New(ctx context.Context, cfg Config) (*DocumentCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &DocumentCache{client: client, ttl: ttl}, nil
}

func Key(docID string) string {
	return "doc:" + docID
}

func (c *DocumentCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (c *DocumentCache) Set(ctx context.Context, key string, value string) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *DocumentCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *DocumentCache) Close() error {
	return c.client.Close()
}
