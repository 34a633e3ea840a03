package xmac

import (
	"iter"
	"strings"
)

// Range 返回从 from 到 to（包含）的地址迭代器。
// 位宽不同、任一地址无效或 from > to 时返回空迭代器。
//
//	from := xmac.MustParse("00:00:00:00:00:01")
//	to := xmac.MustParse("00:00:00:00:00:05")
//	for addr := range xmac.Range(from, to) {
//	    fmt.Println(addr)
//	}
func Range(from, to Addr) iter.Seq[Addr] {
	return func(yield func(Addr) bool) {
		if !from.IsValid() || from.bits != to.bits || from.v > to.v {
			return
		}
		current := from
		for {
			if !yield(current) {
				return
			}
			if current.v == to.v {
				return
			}
			current.v++
		}
	}
}

// RangeN 返回从 start 开始的 n 个连续地址的迭代器。
// 到达位宽上限时提前终止。
func RangeN(start Addr, n int) iter.Seq[Addr] {
	return func(yield func(Addr) bool) {
		current := start
		for remaining := n; remaining > 0; remaining-- {
			if !current.IsValid() || !yield(current) {
				return
			}
			if remaining == 1 {
				return
			}
			next, err := current.Next()
			if err != nil {
				return
			}
			current = next
		}
	}
}

// FillHex 将十六进制数字串补零到 length 位。
// backfill 为 true 时在右侧补零（把 OUI 补成完整地址），否则在左侧补零。
// 输入长度已达到或超过 length 时原样返回。
func FillHex(digits string, length int, backfill bool) string {
	pad := length - len(digits)
	if pad <= 0 {
		return digits
	}
	zeros := strings.Repeat("0", pad)
	if backfill {
		return digits + zeros
	}
	return zeros + digits
}

// HexRange 枚举 varying 位可变十六进制，前后分别拼接固定部分。
//
//	HexRange(1, "AA", "") // AA0, AA1, ..., AAF
//
// varying 超过 15 时返回空迭代器。
func HexRange(varying int, fixedStart, fixedEnd string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if varying <= 0 || varying > 15 {
			return
		}
		total := uint64(1) << uint(4*varying)
		for i := range total {
			if !yield(fixedStart + hexDigits(i, varying) + fixedEnd) {
				return
			}
		}
	}
}
