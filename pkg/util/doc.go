// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xlru: LRU 缓存，泛型支持、自动 TTL 过期
//   - xmac: MAC 地址工具库，多格式解析、校验、格式化与 EUI-64 派生
//
// 设计原则：
//   - 不依赖 oui 业务包，可单独使用
//   - 值类型优先，零值可用
package util
