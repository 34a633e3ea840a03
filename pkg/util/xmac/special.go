package xmac

// Broadcast 返回 48 位广播地址 FF:FF:FF:FF:FF:FF。
func Broadcast() Addr {
	return Addr{v: maxValue(Bits48), bits: Bits48, notation: NotationColon}
}

// IsBroadcast 报告 a 是否为 48 位广播地址。
func (a Addr) IsBroadcast() bool {
	return a.bits == Bits48 && a.v == maxValue(Bits48)
}

// IsMulticast 报告 a 是否为组播地址（首字节 bit 0 为 1）。
// 广播地址也是组播地址。无效地址返回 false。
func (a Addr) IsMulticast() bool {
	return a.IsValid() && a.octet(0)&0x01 == 0x01
}

// IsUnicast 报告 a 是否为单播地址（首字节 bit 0 为 0）。无效地址返回 false。
func (a Addr) IsUnicast() bool {
	return a.IsValid() && a.octet(0)&0x01 == 0
}

// IsLocallyAdministered 报告 a 是否为本地管理地址（首字节 bit 1 为 1）。
// 虚拟机、容器与随机化的 MAC 通常是本地管理地址。无效地址返回 false。
func (a Addr) IsLocallyAdministered() bool {
	return a.IsValid() && a.octet(0)&ulBit == ulBit
}

// IsLocallyAdministeredDigits 对数字串首字节做同样的判断，
// 供只有 OUI 前缀（至少 2 位）的调用方使用。
func IsLocallyAdministeredDigits(digits string) bool {
	if len(digits) < 2 {
		return false
	}
	lo := hexValue(digits[1])
	return lo >= 0 && lo&ulBit == ulBit
}
