package xresolve

import (
	"errors"
	"fmt"

	"github.com/omeyang/xoui/pkg/util/xmac"
)

var (
	// ErrInvalidOUI 表示输入位数不在 6 到 16 之间。
	ErrInvalidOUI = errors.New("xresolve: invalid OUI")

	// ErrUnsupportedInput 表示输入类型不受支持。批量输入中出现该错误时不会执行任何查询。
	ErrUnsupportedInput = errors.New("xresolve: unsupported input type")

	// ErrEmptyStore 表示注册表为空。
	ErrEmptyStore = errors.New("xresolve: registry store is empty")
)

// 非法输入的原因说明。
const (
	ReasonNotHex   = "This is not a valid hex string"
	ReasonTooShort = "OUI/MAC is shorter than 6 hex characters (24 bits) and too short to be any OUI"
	ReasonTooLong  = "OUI/MAC is longer than 16 hex characters (64 bits) and longer than MAC addresses can be"
)

// InvalidOUIError 描述一次非法输入。
//
// 十六进制字符非法时匹配 [xmac.ErrInvalidFormat]，位数越界时匹配 [ErrInvalidOUI]。
type InvalidOUIError struct {
	Input  string
	Reason string
	err    error
}

func (e *InvalidOUIError) Error() string {
	return fmt.Sprintf("xresolve: invalid input %q: %s", e.Input, e.Reason)
}

func (e *InvalidOUIError) Unwrap() error {
	return e.err
}

func tooShort(input string) error {
	return &InvalidOUIError{Input: input, Reason: ReasonTooShort, err: ErrInvalidOUI}
}

func tooLong(input string) error {
	return &InvalidOUIError{Input: input, Reason: ReasonTooLong, err: ErrInvalidOUI}
}

func notHex(input string) error {
	return &InvalidOUIError{Input: input, Reason: ReasonNotHex, err: xmac.ErrInvalidFormat}
}
