package xmac

import (
	"fmt"
	"net/netip"
	"strings"
)

// ulBit 是首字节的 U/L（universal/local）位。
const ulBit = 0x02

// linkLocalPrefix 是 IPv6 链路本地前缀 fe80::/64 的高 8 字节。
var linkLocalPrefix = [8]byte{0xfe, 0x80}

// EUI64Suffix 返回 IPv6 接口标识（低 64 位），小写，每 4 位以 ':' 分隔。
//
// 48 位地址：拆成前后各 3 字节，中间插入 FF FE，并翻转首字节的 U/L 位。
// 64 位地址：直接使用原始 8 字节，不翻转也不插入。
//
//	MustParse("24:6D:5E:BB:99:CC").EUI64Suffix()        // 266d:5eff:febb:99cc
//	MustParse("24:6D:5E:00:00:BB:99:DD").EUI64Suffix()  // 246d:5e00:00bb:99dd
//
// 无效地址返回空字符串。
func (a Addr) EUI64Suffix() string {
	if !a.IsValid() {
		return ""
	}
	iid := a.interfaceID()
	var b strings.Builder
	b.Grow(19)
	for i, octet := range iid {
		if i > 0 && i%2 == 0 {
			b.WriteByte(':')
		}
		b.WriteByte(hexLower[octet>>4])
		b.WriteByte(hexLower[octet&0x0f])
	}
	return b.String()
}

// interfaceID 返回 8 字节接口标识。
func (a Addr) interfaceID() [8]byte {
	var iid [8]byte
	if a.bits == Bits64 {
		for i := range 8 {
			iid[i] = a.octet(i)
		}
		return iid
	}
	iid[0] = a.octet(0) ^ ulBit
	iid[1] = a.octet(1)
	iid[2] = a.octet(2)
	iid[3] = 0xff
	iid[4] = 0xfe
	iid[5] = a.octet(3)
	iid[6] = a.octet(4)
	iid[7] = a.octet(5)
	return iid
}

// LinkLocal 返回 fe80::/64 前缀加接口标识组成的链路本地地址。
// 无效地址返回零值 netip.Addr。
func (a Addr) LinkLocal() netip.Addr {
	if !a.IsValid() {
		return netip.Addr{}
	}
	return joinIPv6(linkLocalPrefix, a.interfaceID())
}

// GlobalAddress 将 IPv6 前缀（如 "2001:db8:1:2::/64"）与接口标识拼接为全局地址。
//
// 前缀必须是 IPv6 且长度不超过 64 位，否则返回 [ErrInvalidPrefix]。
// 前缀中低于前缀长度的位被忽略。
func (a Addr) GlobalAddress(prefix string) (netip.Addr, error) {
	if !a.IsValid() {
		return netip.Addr{}, fmt.Errorf("%w: zero value address", ErrInvalidLength)
	}
	p, err := netip.ParsePrefix(strings.TrimSpace(prefix))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %w", ErrInvalidPrefix, err)
	}
	if !p.Addr().Is6() || p.Addr().Is4In6() {
		return netip.Addr{}, fmt.Errorf("%w: %s is not an ipv6 prefix", ErrInvalidPrefix, prefix)
	}
	if p.Bits() > 64 {
		return netip.Addr{}, fmt.Errorf("%w: prefix length %d exceeds 64", ErrInvalidPrefix, p.Bits())
	}
	raw := p.Masked().Addr().As16()
	var high [8]byte
	copy(high[:], raw[:8])
	return joinIPv6(high, a.interfaceID()), nil
}

func joinIPv6(high, low [8]byte) netip.Addr {
	var raw [16]byte
	copy(raw[:8], high[:])
	copy(raw[8:], low[:])
	return netip.AddrFrom16(raw)
}
