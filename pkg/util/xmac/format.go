package xmac

import (
	"fmt"
	"strings"
)

// Notation 定义地址的分隔风格。
type Notation uint8

const (
	// NotationNone 无分隔符：246D5EBB99CC
	NotationNone Notation = iota
	// NotationColon 冒号分隔：24:6D:5E:BB:99:CC
	NotationColon
	// NotationPeriod 点分隔（每 4 位一组）：246D.5EBB.99CC
	NotationPeriod
	// NotationHyphen 短线分隔：24-6D-5E-BB-99-CC
	NotationHyphen
	// NotationSpace 空格分隔：24 6D 5E BB 99 CC
	NotationSpace
)

// Delimiter 返回分隔符字符，NotationNone 返回 0。
func (n Notation) Delimiter() byte {
	switch n {
	case NotationColon:
		return ':'
	case NotationPeriod:
		return '.'
	case NotationHyphen:
		return '-'
	case NotationSpace:
		return ' '
	default:
		return 0
	}
}

// GroupSize 返回每组的十六进制位数。点分隔为 4，其余为 2。
func (n Notation) GroupSize() int {
	if n == NotationPeriod {
		return 4
	}
	return 2
}

// String 返回风格名称。
func (n Notation) String() string {
	switch n {
	case NotationNone:
		return "none"
	case NotationColon:
		return "colon"
	case NotationPeriod:
		return "period"
	case NotationHyphen:
		return "hyphen"
	case NotationSpace:
		return "space"
	default:
		return fmt.Sprintf("Notation(%d)", uint8(n))
	}
}

// ParseNotation 按名称解析分隔风格（大小写不敏感）。
// "clean" 与 "bare" 视为 "none" 的别名。
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "clean", "bare", "":
		return NotationNone, nil
	case "colon":
		return NotationColon, nil
	case "period", "dot":
		return NotationPeriod, nil
	case "hyphen", "dash":
		return NotationHyphen, nil
	case "space":
		return NotationSpace, nil
	default:
		return NotationNone, fmt.Errorf("xmac: unknown notation %q", s)
	}
}

// notationOf 返回字符对应的分隔风格。
func notationOf(c byte) (Notation, bool) {
	switch c {
	case ':':
		return NotationColon, true
	case '.':
		return NotationPeriod, true
	case '-':
		return NotationHyphen, true
	case ' ':
		return NotationSpace, true
	default:
		return NotationNone, false
	}
}

// Case 定义字母大小写。
type Case uint8

const (
	// Upper 大写（默认）。
	Upper Case = iota
	// Lower 小写。
	Lower
)

// 十六进制字符表。
const (
	hexUpper = "0123456789ABCDEF"
	hexLower = "0123456789abcdef"
)

// Format 对任意十六进制数字串插入分隔符并调整大小写。
//
// digits 不要求是完整地址，OUI 前缀（6/7/9 位）同样适用，
// 末组不足时保留剩余位数：Format("24B7BD603", NotationHyphen, Upper) = "24-B7-BD-60-3"。
// digits 中已有的分隔符不会被去除，调用方应先 [Normalize]。
func Format(digits string, n Notation, c Case) string {
	sep := n.Delimiter()
	group := n.GroupSize()

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/group)
	for i := 0; i < len(digits); i++ {
		if sep != 0 && i > 0 && i%group == 0 {
			b.WriteByte(sep)
		}
		ch := digits[i]
		if c == Lower && 'A' <= ch && ch <= 'F' {
			ch += 'a' - 'A'
		} else if c == Upper && 'a' <= ch && ch <= 'f' {
			ch -= 'a' - 'A'
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// hexDigits 将 v 渲染为 width 位大写十六进制，左侧补零。
func hexDigits(v uint64, width int) string {
	var buf [16]byte
	for i := width - 1; i >= 0; i-- {
		buf[i] = hexUpper[v&0x0f]
		v >>= 4
	}
	return string(buf[:width])
}
