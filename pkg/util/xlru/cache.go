package xlru

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const maxSize = 1 << 24

// Config 缓存配置。
type Config struct {
	// Size 最大条目数，范围 [1, 16777216]。
	Size int
	// TTL 条目存活时间，0 表示不过期。
	TTL time.Duration
}

// Validate 校验配置。
func (c Config) Validate() error {
	if c.Size <= 0 || c.Size > maxSize {
		return ErrInvalidSize
	}
	if c.TTL < 0 {
		return ErrInvalidTTL
	}
	return nil
}

// Cache 是带 TTL 的 LRU 缓存，通过 [New] 创建。
// Close 之后读返回零值，写被忽略。
type Cache[K comparable, V any] struct {
	lru       *expirable.LRU[K, V]
	closed    atomic.Bool
	closeOnce sync.Once
}

// New 创建缓存。
func New[K comparable, V any](cfg Config) (*Cache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: expirable.NewLRU[K, V](cfg.Size, nil, cfg.TTL)}, nil
}

// Get 返回未过期的值。
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.lru.Get(key)
}

// Set 写入值并刷新 TTL，返回是否淘汰了旧条目。
func (c *Cache[K, V]) Set(key K, value V) bool {
	if c.closed.Load() {
		return false
	}
	return c.lru.Add(key, value)
}

// Contains 报告 key 是否存在且未过期，不影响 LRU 顺序。
//
// 上游 Contains 不检查过期，这里用 Peek 代替。
func (c *Cache[K, V]) Contains(key K) bool {
	if c.closed.Load() {
		return false
	}
	_, ok := c.lru.Peek(key)
	return ok
}

// Delete 删除条目，返回条目是否存在。
func (c *Cache[K, V]) Delete(key K) bool {
	if c.closed.Load() {
		return false
	}
	return c.lru.Remove(key)
}

// Purge 清空全部条目。
func (c *Cache[K, V]) Purge() {
	if c.closed.Load() {
		return
	}
	c.lru.Purge()
}

// Len 返回条目数，可能包含已过期但尚未清理的条目。
func (c *Cache[K, V]) Len() int {
	if c.closed.Load() {
		return 0
	}
	return c.lru.Len()
}

// Close 清空缓存并停止后台清理 goroutine，可重复调用。
func (c *Cache[K, V]) Close() {
	c.closed.Store(true)
	c.closeOnce.Do(func() {
		c.lru.Purge()
		stopCleanup(c.lru)
	})
}

// stopCleanup 关闭 expirable.LRU 未导出的 done 通道，使清理 goroutine 退出。
//
// 设计决策: golang-lru/v2@v2.0.7 在 TTL > 0 时启动清理 goroutine，但没有公开的 Close。
// 这里通过反射定位字段 "done"（chan struct{}）并关闭它；字段缺失或类型不符时返回 false，
// 由 TestStopCleanup_UpstreamLayout 在升级依赖时发现。上游提供 Close 后应改为直接调用。
func stopCleanup(lru any) (stopped bool) {
	defer func() {
		if recover() != nil {
			stopped = false
		}
	}()

	v := reflect.ValueOf(lru)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}
	done := v.Elem().FieldByName("done")
	if !done.IsValid() || done.Type() != reflect.TypeOf(make(chan struct{})) || done.IsNil() {
		return false
	}
	ch := *(*chan struct{})(unsafe.Pointer(done.UnsafeAddr())) //nolint:gosec // 访问上游未导出字段
	close(ch)
	return true
}
