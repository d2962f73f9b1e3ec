package enricher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores ratings by normalized company name.
type Cache interface {
	Get(ctx context.Context, company string) (Rating, bool, error)
	Set(ctx context.Context, company string, r Rating) error
}

type memoryEntry struct {
	rating  Rating
	expires time.Time
}

// MemoryCache is an in-process Cache; entries older than ttl are misses. A zero ttl
// keeps entries for the life of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, company string) (Rating, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[company]
	if !ok {
		return Rating{}, false, nil
	}
	if c.ttl > 0 && c.now().After(e.expires) {
		return Rating{}, false, nil
	}
	return e.rating, true, nil
}

func (c *MemoryCache) Set(_ context.Context, company string, r Rating) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[company] = memoryEntry{rating: r, expires: c.now().Add(c.ttl)}
	return nil
}

// RedisCache stores ratings in Redis as JSON under prefix+company.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to addr and checks the server answers.
func NewRedisCache(ctx context.Context, addr, prefix string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, company string) (Rating, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+company).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Rating{}, false, nil
		}
		return Rating{}, false, err
	}

	var r Rating
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return Rating{}, false, fmt.Errorf("decode cached rating: %w", err)
	}
	return r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, company string, r Rating) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+company, payload, c.ttl).Err()
}
