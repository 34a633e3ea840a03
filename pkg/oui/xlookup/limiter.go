package xlookup

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// DefaultRate 返回公开配额：带 API 密钥 10 次/秒，否则 2 次/秒。
func DefaultRate(hasAPIKey bool) float64 {
	if hasAPIKey {
		return 10
	}
	return 2
}

// Limiter 在发起请求前等待配额，ctx 结束时返回其错误。
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewLocalLimiter 创建进程内令牌桶，突发量为 1。perSecond 非正时不限流。
func NewLocalLimiter(perSecond float64) Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// RedisLimiter 通过 Redis 在多个进程间共享配额。
type RedisLimiter struct {
	limiter *redis_rate.Limiter
	key     string
	limit   redis_rate.Limit
}

// NewRedisLimiter 创建共享限流器。perSecond 向上取整且至少为 1。
func NewRedisLimiter(rdb redis.UniversalClient, key string, perSecond float64) *RedisLimiter {
	n := max(int(math.Ceil(perSecond)), 1)
	return &RedisLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		key:     key,
		limit:   redis_rate.PerSecond(n),
	}
}

// Wait 消耗一个配额，配额不足时按服务端给出的 RetryAfter 等待后重试。
func (l *RedisLimiter) Wait(ctx context.Context) error {
	for {
		res, err := l.limiter.Allow(ctx, l.key, l.limit)
		if err != nil {
			return fmt.Errorf("xlookup: redis limiter: %w", err)
		}
		if res.Allowed > 0 {
			return nil
		}
		wait := res.RetryAfter
		if wait <= 0 {
			wait = 10 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Reset 清空共享配额计数。
func (l *RedisLimiter) Reset(ctx context.Context) error {
	return l.limiter.Reset(ctx, l.key)
}
