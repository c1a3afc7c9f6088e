package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then admits the event if
// there is room. Returns {allowed, count, oldest score}.
var slidingWindow = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max    = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
if count >= max then
  local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
  return {0, count, tonumber(oldest[2])}
end
redis.call("ZADD", key, now, member)
redis.call("PEXPIRE", key, window)
return {1, count + 1, 0}
`)

// Redis is a sliding window limiter shared between instances through Redis.
type Redis struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRedis returns a limiter storing its windows under prefix.
func NewRedis(client *redis.Client, prefix string, max int, window time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, max: max, window: window, now: time.Now}
}

// Allow records an event for key if the window has room.
func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	now := r.now().UnixMilli()
	vals, err := slidingWindow.Run(ctx, r.client,
		[]string{r.prefix + key},
		now, r.window.Milliseconds(), r.max, strconv.FormatInt(now, 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply %v", vals)
	}
	if vals[0] == 0 {
		retry := time.Duration(vals[2]+r.window.Milliseconds()-now) * time.Millisecond
		return Result{Limit: r.max, RetryAfter: retry}, nil
	}
	return Result{Allowed: true, Limit: r.max, Remaining: r.max - int(vals[1])}, nil
}

// Reset deletes the window stored for key.
func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}

// NewRedisClient parses a redis:// URL and verifies the server responds.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
