package xlookup

import "errors"

var (
	// ErrUnavailable 表示查询服务不可用：网络错误、服务端错误或熔断打开。
	ErrUnavailable = errors.New("xlookup: service unavailable")

	// ErrRateLimited 表示服务端返回 429。
	ErrRateLimited = errors.New("xlookup: rate limited")

	// ErrRejected 表示服务端拒绝请求（4xx 或 success=false），重试无意义。
	ErrRejected = errors.New("xlookup: request rejected")

	// ErrInvalidResponse 表示响应无法解析。
	ErrInvalidResponse = errors.New("xlookup: invalid response")

	// ErrInvalidAddress 表示待查询的地址不是 6 到 12 位十六进制。
	ErrInvalidAddress = errors.New("xlookup: invalid address")
)
