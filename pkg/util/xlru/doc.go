// Package xlru 提供带 TTL 的并发安全 LRU 缓存。
//
// 基于 hashicorp/golang-lru/v2 的 expirable 实现，补上了上游缺失的 Close：
// TTL > 0 时上游会启动后台清理 goroutine，Close 负责让它退出。
//
//	cache, err := xlru.New[string, struct{}](xlru.Config{Size: 4096, TTL: time.Hour})
//	if err != nil {
//		return err
//	}
//	defer cache.Close()
package xlru
