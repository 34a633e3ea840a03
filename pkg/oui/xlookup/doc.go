// Package xlookup 是 maclookup.app v2 厂商查询接口的客户端，作为离线注册表未命中时的兜底。
//
// 请求路径为 {base}/{12 位地址}，设置了 API 密钥时附加 apiKey 查询参数。
// 公开配额为匿名 2 次/秒、带密钥 10 次/秒，客户端在发起请求前通过 [Limiter] 等待配额：
//
//   - [NewLocalLimiter]：进程内令牌桶（golang.org/x/time/rate）
//   - [NewRedisLimiter]：多个进程共享同一配额（redis_rate）
//
// 请求失败时按 retry-go 重试，连续失败后由 gobreaker 熔断，熔断期间立即返回
// [ErrUnavailable]，不占用配额。
//
//	client := xlookup.New(xlookup.WithAPIKey(os.Getenv("MACLOOKUP_API_KEY")))
//	resp, err := client.Lookup(ctx, "246D5E")
package xlookup
