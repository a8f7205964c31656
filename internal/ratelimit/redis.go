package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "lessonplanner:ratelimit:"

// RedisCounter shares windows between processes with INCR and EXPIRE.
type RedisCounter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

// NewRedisCounter wraps an existing client.
func NewRedisCounter(rdb redis.Cmdable, limit int, window time.Duration) *RedisCounter {
	return &RedisCounter{rdb: rdb, limit: limit, window: window, prefix: defaultKeyPrefix}
}

// DialRedis opens a client for addr and checks it with PING.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *RedisCounter) CheckAndIncrement(ctx context.Context, key string) (Decision, error) {
	k := r.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, r.window)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate counter %s: %w", key, err)
	}

	count := int(incr.Val())
	reset := time.Now().Add(r.window)
	if d := ttl.Val(); d > 0 {
		reset = time.Now().Add(d)
	}

	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= r.limit,
		Limit:     r.limit,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}
