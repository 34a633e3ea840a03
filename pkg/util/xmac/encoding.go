package xmac

import (
	"encoding/json"
	"fmt"
)

// MarshalText 实现 [encoding.TextMarshaler]，输出大写冒号格式。
// 无效地址输出空字节切片。
func (a Addr) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return []byte{}, nil
	}
	return []byte(a.Format(NotationColon, Upper)), nil
}

// UnmarshalText 实现 [encoding.TextUnmarshaler]，支持所有 [Parse] 支持的格式。
// 空输入设置为零值。
func (a *Addr) UnmarshalText(text []byte) error {
	if a == nil {
		return ErrNilReceiver
	}
	if len(text) == 0 {
		*a = Addr{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON 实现 [json.Marshaler]。无效地址输出 ""。
func (a Addr) MarshalJSON() ([]byte, error) {
	text, _ := a.MarshalText()
	buf := make([]byte, 0, len(text)+2)
	buf = append(buf, '"')
	buf = append(buf, text...)
	buf = append(buf, '"')
	return buf, nil
}

// UnmarshalJSON 实现 [json.Unmarshaler]。空字符串或 null 设置为零值。
func (a *Addr) UnmarshalJSON(data []byte) error {
	if a == nil {
		return ErrNilReceiver
	}
	if string(data) == "null" {
		*a = Addr{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return a.UnmarshalText([]byte(s))
}
