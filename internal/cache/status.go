// Package cache provides a short-TTL Redis cache for job status polls, so
// redundant polling from the UI does not hammer the review engine.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const statusPrefix = "jobstatus:"

// StatusCache caches job execution status payloads keyed by jobExecutionId.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Options configures the Redis connection and entry TTL.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewStatusCache connects to Redis and returns a StatusCache. The connection
// is verified eagerly so a misconfigured cache fails at startup, not mid-poll.
func NewStatusCache(opts Options) (*StatusCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &StatusCache{client: client, ttl: ttl}, nil
}

// Get returns a cached status payload, if present and unexpired.
func (c *StatusCache) Get(ctx context.Context, jobExecutionID string) (map[string]interface{}, bool) {
	data, err := c.client.Get(ctx, statusPrefix+jobExecutionID).Bytes()
	if err != nil {
		return nil, false
	}
	var status map[string]interface{}
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, false
	}
	return status, true
}

// Set stores a status payload under the configured TTL. Failures are
// swallowed: the cache is an optimization, not a source of truth.
func (c *StatusCache) Set(ctx context.Context, jobExecutionID string, status map[string]interface{}) {
	data, err := json.Marshal(status)
	if err != nil {
		return
	}
	c.client.Set(ctx, statusPrefix+jobExecutionID, data, c.ttl)
}
