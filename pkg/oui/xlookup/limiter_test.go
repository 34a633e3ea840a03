package xlookup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRate(t *testing.T) {
	assert.Equal(t, float64(10), DefaultRate(true))
	assert.Equal(t, float64(2), DefaultRate(false))
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(0)
	for range 100 {
		require.NoError(t, l.Wait(context.Background()))
	}

	l = NewLocalLimiter(1)
	require.NoError(t, l.Wait(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func newRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestRedisLimiter(t *testing.T) {
	rdb := newRedis(t)
	l := NewRedisLimiter(rdb, "xoui:lookup", 2)
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	// 配额用尽后在截止时间前拿不到第三个配额
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(short), context.DeadlineExceeded)

	require.NoError(t, l.Reset(ctx))
	require.NoError(t, l.Wait(ctx))
}

func TestRedisLimiter_MinimumOne(t *testing.T) {
	l := NewRedisLimiter(newRedis(t), "k", 0.2)
	assert.Equal(t, 1, l.limit.Rate)
}

func TestRedisLimiter_ClosedClient(t *testing.T) {
	rdb := newRedis(t)
	require.NoError(t, rdb.Close())
	l := NewRedisLimiter(rdb, "k", 1)
	assert.Error(t, l.Wait(context.Background()))
}
