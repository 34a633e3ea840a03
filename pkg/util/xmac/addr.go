package xmac

import (
	"net"
	"strconv"
	"strings"
)

// Addr 表示 48 位或 64 位硬件地址（EUI-48/EUI-64）。
//
// Addr 是不可变值类型：
//   - 零值表示无效地址，IsValid() 返回 false
//   - 并发安全，无需加锁
//   - 所有派生视图都由数值即时计算，不修改 Addr 本身
//
// 两个地址是否相等应使用 [Addr.Equal]；== 还会比较记住的分隔风格。
type Addr struct {
	v        uint64
	bits     uint8
	notation Notation
}

// Key 是忽略分隔风格的可比较标识，适合作为 map key。
type Key struct {
	v    uint64
	bits uint8
}

// maxValue 返回位宽允许的最大数值。
func maxValue(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(bits) - 1
}

// IsValid 报告 a 是否由解析或构造得到。零值返回 false。
func (a Addr) IsValid() bool {
	return a.bits != 0
}

// Bits 返回位宽：48、64，零值返回 0。
func (a Addr) Bits() int {
	return int(a.bits)
}

// Notation 返回解析时记住的分隔风格。
func (a Addr) Notation() Notation {
	return a.notation
}

// WithNotation 返回相同数值、使用新分隔风格的地址。
func (a Addr) WithNotation(n Notation) Addr {
	a.notation = n
	return a
}

// Digits 返回无分隔符的大写十六进制数字串（12 或 16 位）。
// 无效地址返回空字符串。
func (a Addr) Digits() string {
	if !a.IsValid() {
		return ""
	}
	return hexDigits(a.v, int(a.bits)/4)
}

// Format 按指定风格与大小写格式化。无效地址返回空字符串。
func (a Addr) Format(n Notation, c Case) string {
	if !a.IsValid() {
		return ""
	}
	return Format(a.Digits(), n, c)
}

// String 使用记住的分隔风格输出大写形式。无效地址返回空字符串。
func (a Addr) String() string {
	return a.Format(a.notation, Upper)
}

// Key 返回忽略分隔风格的可比较标识。
func (a Addr) Key() Key {
	return Key{v: a.v, bits: a.bits}
}

// Equal 报告两个地址的数字与位宽是否相同，忽略分隔风格。
func (a Addr) Equal(b Addr) bool {
	return a.Key() == b.Key()
}

// Compare 先按位宽、再按数值比较。
// 返回值：-1 (a < b), 0 (a == b), 1 (a > b)。
func (a Addr) Compare(b Addr) int {
	switch {
	case a.bits < b.bits:
		return -1
	case a.bits > b.bits:
		return 1
	case a.v < b.v:
		return -1
	case a.v > b.v:
		return 1
	default:
		return 0
	}
}

// Decimal 返回地址的数值。
func (a Addr) Decimal() uint64 {
	return a.v
}

// Binary 返回二进制数字串，左侧补零到位宽长度。无效地址返回空字符串。
func (a Addr) Binary() string {
	if !a.IsValid() {
		return ""
	}
	s := strconv.FormatUint(a.v, 2)
	if pad := int(a.bits) - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return s
}

// Octets 返回大端字节表示，长度为 6 或 8。返回副本。
func (a Addr) Octets() []byte {
	n := int(a.bits) / 8
	out := make([]byte, n)
	for i := range n {
		out[i] = byte(a.v >> uint(8*(n-1-i)))
	}
	return out
}

// octet 返回第 i 个字节（大端）。
func (a Addr) octet(i int) byte {
	n := int(a.bits) / 8
	return byte(a.v >> uint(8*(n-1-i)))
}

// OUI 返回前 6 位十六进制（24 位 MA-L 前缀）。无效地址返回空字符串。
func (a Addr) OUI() string {
	return a.Prefix(6)
}

// Prefix 返回前 n 位十六进制数字。n 超出范围时按范围截取。
func (a Addr) Prefix(n int) string {
	d := a.Digits()
	if n > len(d) {
		n = len(d)
	}
	if n < 0 {
		n = 0
	}
	return d[:n]
}

// HardwareAddr 返回 [net.HardwareAddr] 表示。无效地址返回 nil。
func (a Addr) HardwareAddr() net.HardwareAddr {
	if !a.IsValid() {
		return nil
	}
	return net.HardwareAddr(a.Octets())
}

// FromHardwareAddr 从 [net.HardwareAddr] 创建地址，长度必须为 6 或 8 字节。
func FromHardwareAddr(hw net.HardwareAddr) (Addr, error) {
	if len(hw) != 6 && len(hw) != 8 {
		return Addr{}, errLength(len(hw) * 2)
	}
	var v uint64
	for _, b := range hw {
		v = v<<8 | uint64(b)
	}
	return Addr{v: v, bits: uint8(len(hw) * 8), notation: NotationColon}, nil
}
