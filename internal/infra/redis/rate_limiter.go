package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cledumemoire/internal/domain/ports/adapter"
)

var _ adapter.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter: the first hit in a window sets the expiry.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// Reset clears the counter, e.g. after a successful login.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key)
}

func ClientIPKey(ip string) string {
	return fmt.Sprintf("rate_limit:ip:%s", ip)
}

func LoginFailureKey(email string) string {
	return fmt.Sprintf("rate_limit:login:%s", strings.ToLower(strings.TrimSpace(email)))
}
