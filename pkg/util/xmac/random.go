package xmac

import (
	"fmt"
	"math/rand/v2"
)

// Random 返回指定位宽（48 或 64）的随机地址，使用冒号风格。
// 随机数不具备密码学强度，只用于测试数据与演示。
func Random(bits int) (Addr, error) {
	switch bits {
	case Bits48, Bits64:
	default:
		return Addr{}, fmt.Errorf("%w: bit length must be 48 or 64, got %d", ErrInvalidLength, bits)
	}
	return Addr{v: rand.Uint64() & maxValue(bits), bits: uint8(bits), notation: NotationColon}, nil
}

// RandomHex 返回 n 位随机大写十六进制数字串。
func RandomHex(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = hexUpper[rand.IntN(16)]
	}
	return string(buf)
}
