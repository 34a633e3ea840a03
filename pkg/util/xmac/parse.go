package xmac

import (
	"fmt"
	"strconv"
	"strings"
)

// 位宽与对应的十六进制位数。
const (
	Bits48 = 48
	Bits64 = 64

	Digits48 = Bits48 / 4
	Digits64 = Bits64 / 4
)

// Normalize 去除 ':' '.' '-' ' ' 分隔符并统一大写。
//
// Normalize 不校验长度，OUI 前缀与完整地址都可使用。
// 去除分隔符后出现十六进制以外的字符返回 [ErrInvalidFormat]，
// 结果为空返回 [ErrEmpty]。
func Normalize(s string) (string, error) {
	digits, _, err := normalize(s)
	return digits, err
}

// NormalizeUint 将整数渲染为大写十六进制数字串，不补零。
//
// 因为不补零，前导为 0 的地址需要使用 [FromDecimal] 显式指定位宽。
func NormalizeUint(n uint64) string {
	return strings.ToUpper(strconv.FormatUint(n, 16))
}

// Validate 返回数字串对应的位宽：12 位十六进制返回 48，16 位返回 64，
// 其它长度或含非十六进制字符返回 0。
func Validate(digits string) int {
	for i := 0; i < len(digits); i++ {
		if hexValue(digits[i]) < 0 {
			return 0
		}
	}
	switch len(digits) {
	case Digits48:
		return Bits48
	case Digits64:
		return Bits64
	default:
		return 0
	}
}

// Parse 解析地址字符串。
//
// 接受任意分隔风格（含无分隔符），大小写不敏感。
// 规范化后不是 12 或 16 位十六进制时返回 [ErrInvalidLength]，绝不截断或补齐。
// 地址记住输入中首个分隔符对应的风格。
func Parse(s string) (Addr, error) {
	digits, notation, err := normalize(s)
	if err != nil {
		return Addr{}, err
	}
	bits := Validate(digits)
	if bits == 0 {
		return Addr{}, errLength(len(digits))
	}
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		// Validate 已保证只含十六进制字符且不超过 16 位
		return Addr{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return Addr{v: v, bits: uint8(bits), notation: notation}, nil
}

// MustParse 类似 [Parse]，但解析失败时 panic。
// 仅用于包级变量初始化或测试。
func MustParse(s string) Addr {
	addr, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("xmac.MustParse(%q): %v", s, err))
	}
	return addr
}

// ParseUint 以整数输入构造地址，等价于 Parse(NormalizeUint(n))。
func ParseUint(n uint64) (Addr, error) {
	return Parse(NormalizeUint(n))
}

// FromDecimal 以指定位宽从数值构造地址，左侧补零到 bits/4 位。
//
// bits 只能是 48 或 64，否则返回 [ErrInvalidLength]；
// 数值超出位宽返回 [ErrOutOfRange]，不截断。结果使用冒号风格。
func FromDecimal(v uint64, bits int) (Addr, error) {
	switch bits {
	case Bits48:
		if v > maxValue(Bits48) {
			return Addr{}, fmt.Errorf("%w: %d does not fit in 48 bits", ErrOutOfRange, v)
		}
	case Bits64:
	default:
		return Addr{}, fmt.Errorf("%w: bit length must be 48 or 64, got %d", ErrInvalidLength, bits)
	}
	return Addr{v: v, bits: uint8(bits), notation: NotationColon}, nil
}

// errLength 构造位数错误。
func errLength(got int) error {
	return fmt.Errorf("%w: expected 12 or 16 hex digits, got %d", ErrInvalidLength, got)
}

// normalize 返回数字串与输入中首个分隔符对应的风格。
func normalize(s string) (string, Notation, error) {
	notation := NotationNone
	seen := false

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if n, ok := notationOf(c); ok {
			if !seen {
				notation, seen = n, true
			}
			continue
		}
		if hexValue(c) < 0 {
			return "", NotationNone, fmt.Errorf("%w: unexpected character %q at position %d", ErrInvalidFormat, c, i)
		}
		if 'a' <= c && c <= 'f' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	if b.Len() == 0 {
		return "", NotationNone, ErrEmpty
	}
	return b.String(), notation, nil
}

// hexValue 返回十六进制字符的数值，无效字符返回 -1。
func hexValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c - 'a' + 10)
	case 'A' <= c && c <= 'F':
		return int(c - 'A' + 10)
	default:
		return -1
	}
}
