package xmac

import (
	"fmt"
	"math"
)

// Add 返回 a + n，位宽与分隔风格保持不变。
// 结果超过位宽返回 [ErrOverflow]，小于 0 返回 [ErrUnderflow]。
func (a Addr) Add(n int64) (Addr, error) {
	if n >= 0 {
		return a.addUnsigned(uint64(n))
	}
	return a.subUnsigned(magnitude(n))
}

// Sub 返回 a - n，位宽与分隔风格保持不变。
func (a Addr) Sub(n int64) (Addr, error) {
	if n >= 0 {
		return a.subUnsigned(uint64(n))
	}
	return a.addUnsigned(magnitude(n))
}

// Next 返回 a + 1。
func (a Addr) Next() (Addr, error) {
	return a.addUnsigned(1)
}

// Prev 返回 a - 1。
func (a Addr) Prev() (Addr, error) {
	return a.subUnsigned(1)
}

// Diff 返回 a - b 的整数差，可以为负。
// 差值超出 int64 表示范围时返回 [ErrOutOfRange]。
func (a Addr) Diff(b Addr) (int64, error) {
	if a.v >= b.v {
		d := a.v - b.v
		if d > math.MaxInt64 {
			return 0, fmt.Errorf("%w: difference %d exceeds int64", ErrOverflow, d)
		}
		return int64(d), nil
	}
	d := b.v - a.v
	if d > 1<<63 {
		return 0, fmt.Errorf("%w: difference -%d exceeds int64", ErrUnderflow, d)
	}
	return -int64(d-1) - 1, nil
}

func (a Addr) addUnsigned(n uint64) (Addr, error) {
	if !a.IsValid() {
		return Addr{}, fmt.Errorf("%w: zero value address", ErrInvalidLength)
	}
	limit := maxValue(int(a.bits))
	if n > limit-a.v {
		return Addr{}, fmt.Errorf("%w: %s + %d exceeds %d bits", ErrOverflow, a.Digits(), n, a.bits)
	}
	a.v += n
	return a, nil
}

func (a Addr) subUnsigned(n uint64) (Addr, error) {
	if !a.IsValid() {
		return Addr{}, fmt.Errorf("%w: zero value address", ErrInvalidLength)
	}
	if n > a.v {
		return Addr{}, fmt.Errorf("%w: %s - %d is negative", ErrUnderflow, a.Digits(), n)
	}
	a.v -= n
	return a, nil
}

// magnitude 返回负数 n 的绝对值，math.MinInt64 也能正确处理。
func magnitude(n int64) uint64 {
	return uint64(-(n + 1)) + 1
}
