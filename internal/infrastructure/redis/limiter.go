package redis

import (
	"context"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"
)

// FixedWindow counts hits per key in windows of a fixed length. The first
// hit of a window creates the counter and sets its expiry.
type FixedWindow struct {
	client *goRedis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewFixedWindow(client *goRedis.Client, prefix string, limit int, window time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &FixedWindow{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow records one hit for key and reports whether it is within the limit.
func (w *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	k := w.key(key)

	hits, err := w.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if hits == 1 {
		if err := w.client.Expire(ctx, k, w.window).Err(); err != nil {
			return false, err
		}
	}
	return hits <= int64(w.limit), nil
}

func (w *FixedWindow) key(key string) string {
	return fmt.Sprintf("%s%s", w.prefix, key)
}
