package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDriver stores jobs in a Redis list, surviving process restarts.
type RedisDriver struct {
	client *redis.Client
	key    string
}

// NewRedisDriver wraps an existing Redis client. key is the list name.
func NewRedisDriver(client *redis.Client, key string) *RedisDriver {
	if key == "" {
		key = "bloomkart:queue"
	}
	return &RedisDriver{client: client, key: key}
}

// Push appends the payload to the list.
func (d *RedisDriver) Push(payload []byte) error {
	return d.client.RPush(context.Background(), d.key, payload).Err()
}

// Pop blocks up to two seconds waiting for a payload, returning (nil, nil)
// on timeout so the worker loop can observe ctx cancellation.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.client.BLPop(ctx, 2*time.Second, d.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BLPop returns [key, value].
	if len(res) != 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}
