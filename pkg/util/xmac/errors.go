package xmac

import (
	"errors"
	"fmt"
)

// 预定义错误变量，支持 errors.Is 判断。
var (
	// ErrInvalidFormat 表示输入包含十六进制数字与分隔符之外的字符。
	ErrInvalidFormat = errors.New("xmac: invalid format")

	// ErrEmpty 表示输入去除分隔符后为空。
	ErrEmpty = fmt.Errorf("%w: empty input", ErrInvalidFormat)

	// ErrInvalidLength 表示十六进制位数既不是 12（EUI-48）也不是 16（EUI-64）。
	ErrInvalidLength = errors.New("xmac: invalid length")

	// ErrOutOfRange 表示数值转换或地址运算超出目标位宽。
	ErrOutOfRange = errors.New("xmac: out of range")

	// ErrOverflow 表示地址运算结果超过位宽上限。
	ErrOverflow = fmt.Errorf("%w: address overflow", ErrOutOfRange)

	// ErrUnderflow 表示地址运算结果为负数。
	ErrUnderflow = fmt.Errorf("%w: address underflow", ErrOutOfRange)

	// ErrInvalidPrefix 表示用于构造 IPv6 全局地址的前缀无效。
	ErrInvalidPrefix = errors.New("xmac: invalid ipv6 prefix")

	// ErrNilReceiver 表示在 nil 指针上调用反序列化方法。
	ErrNilReceiver = errors.New("xmac: nil receiver")
)
