package visitor

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const markerKeyPrefix = "portfolio:visitor_sent:" // portfolio:visitor_sent:{session}

// RedisMarker uses SETNX so concurrent first requests of one session race on
// a single key. Keys expire on their own; no purge is needed.
type RedisMarker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMarker(client *redis.Client, ttl time.Duration) *RedisMarker {
	return &RedisMarker{client: client, ttl: ttl}
}

func (r *RedisMarker) MarkSent(ctx context.Context, session string) (bool, error) {
	ok, err := r.client.SetNX(ctx, markerKeyPrefix+session, "true", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set visitor marker: %w", err)
	}
	return ok, nil
}
