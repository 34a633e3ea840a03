package xlru

import "errors"

var (
	// ErrInvalidSize 表示缓存容量不合法。
	ErrInvalidSize = errors.New("xlru: size must be between 1 and 16777216")

	// ErrInvalidTTL 表示 TTL 为负数。
	ErrInvalidTTL = errors.New("xlru: ttl must not be negative")
)
