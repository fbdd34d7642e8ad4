package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache is a fast-path duplicate check for event ids. It sits in front
// of the durable processed-events record: a cache miss or a redis outage
// only costs a round trip to the durable check, never a double decrement.
type SeenCache interface {
	// MarkSeen returns true if eventID was not seen before this call.
	MarkSeen(ctx context.Context, eventID string) (bool, error)
}

type RedisSeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSeenCache(client *redis.Client) *RedisSeenCache {
	return &RedisSeenCache{
		client: client,
		// Gateways stop redelivering within days; a generous TTL keeps the
		// keyspace bounded without weakening the durable guard behind it.
		ttl: 72 * time.Hour,
	}
}

func (c *RedisSeenCache) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	first, err := c.client.SetNX(ctx, seenKey(eventID), 1, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return first, nil
}

func seenKey(eventID string) string {
	return fmt.Sprintf("webhook:seen:%s", eventID)
}
