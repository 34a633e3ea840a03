package xresolve

import (
	"fmt"
	"math/bits"

	"github.com/omeyang/xoui/pkg/util/xmac"
)

type inputKind uint8

const (
	kindText inputKind = iota + 1
	kindNumber
)

// Input 是一次解析的输入：文本或整数，只能通过 [Text] 与 [Number] 构造。
type Input struct {
	kind inputKind
	text string
	num  uint64
}

// Text 创建文本输入，支持 ':' '.' '-' ' ' 分隔或无分隔。
func Text(s string) Input {
	return Input{kind: kindText, text: s}
}

// Number 创建整数输入。整数视为完整地址的数值，不超过 48 位时补零到 12 位，
// 否则补零到 16 位。
func Number(n uint64) Input {
	return Input{kind: kindNumber, num: n}
}

// String 返回输入的原始文本；整数输入返回十进制表示。
func (in Input) String() string {
	switch in.kind {
	case kindText:
		return in.text
	case kindNumber:
		return fmt.Sprintf("%d", in.num)
	default:
		return ""
	}
}

// digits 返回规范化后的数字串。
func (in Input) digits() (string, error) {
	switch in.kind {
	case kindText:
		return xmac.Normalize(in.text)
	case kindNumber:
		width := xmac.Digits48
		if bits.Len64(in.num) > xmac.Bits48 {
			width = xmac.Digits64
		}
		return xmac.FillHex(xmac.NormalizeUint(in.num), width, false), nil
	default:
		return "", xmac.ErrEmpty
	}
}

// InputsFrom 把调用方的值转换为输入列表。
//
// 接受 string、Input、无符号或非负有符号整数，以及这些类型的切片（含 []any）。
// 任一元素不受支持时返回 [ErrUnsupportedInput]，不返回部分结果。
func InputsFrom(v any) ([]Input, error) {
	switch x := v.(type) {
	case []string:
		out := make([]Input, len(x))
		for i, s := range x {
			out[i] = Text(s)
		}
		return out, nil
	case []Input:
		return append([]Input(nil), x...), nil
	case []any:
		out := make([]Input, 0, len(x))
		for i, e := range x {
			in, err := inputFrom(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, in)
		}
		return out, nil
	default:
		in, err := inputFrom(v)
		if err != nil {
			return nil, err
		}
		return []Input{in}, nil
	}
}

func inputFrom(v any) (Input, error) {
	switch x := v.(type) {
	case string:
		return Text(x), nil
	case Input:
		if x.kind == 0 {
			return Input{}, fmt.Errorf("%w: zero Input", ErrUnsupportedInput)
		}
		return x, nil
	case uint64:
		return Number(x), nil
	case uint:
		return Number(uint64(x)), nil
	case uint32:
		return Number(uint64(x)), nil
	case int:
		return signed(int64(x))
	case int64:
		return signed(x)
	case int32:
		return signed(int64(x))
	default:
		return Input{}, fmt.Errorf("%w: %T", ErrUnsupportedInput, v)
	}
}

func signed(n int64) (Input, error) {
	if n < 0 {
		return Input{}, fmt.Errorf("%w: negative number %d", ErrUnsupportedInput, n)
	}
	return Number(uint64(n)), nil
}
