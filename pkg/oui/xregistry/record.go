package xregistry

import (
	"fmt"
	"strings"
)

// Assignment 是 IEEE 分配类型。
type Assignment uint8

// 分配类型。零值表示未知。
const (
	MAL Assignment = iota + 1 // MA-L，24 位
	MAM                       // MA-M，28 位
	MAS                       // MA-S，36 位
)

// lookupOrder 是查询顺序：最具体的分配优先。
var lookupOrder = [...]Assignment{MAS, MAM, MAL}

// Assignments 返回全部分配类型，按 MA-L、MA-M、MA-S 排列。
func Assignments() []Assignment {
	return []Assignment{MAL, MAM, MAS}
}

// String 返回 IEEE 名称。
func (a Assignment) String() string {
	switch a {
	case MAL:
		return "MA-L"
	case MAM:
		return "MA-M"
	case MAS:
		return "MA-S"
	default:
		return fmt.Sprintf("Assignment(%d)", uint8(a))
	}
}

// PrefixLen 返回该分配类型的十六进制前缀位数，未知类型返回 0。
func (a Assignment) PrefixLen() int {
	switch a {
	case MAL:
		return 6
	case MAM:
		return 7
	case MAS:
		return 9
	default:
		return 0
	}
}

// Valid 报告 a 是否为已知分配类型。
func (a Assignment) Valid() bool {
	return a.PrefixLen() > 0
}

// MarshalText 实现 encoding.TextMarshaler。
func (a Assignment) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAssignment, uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler。
func (a *Assignment) UnmarshalText(text []byte) error {
	v, err := ParseAssignment(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAssignment 解析 IEEE 注册表名称。
// 接受 "MA-L"/"MA-M"/"MA-S"，以及历史别名 "OUI"、"OUI28"、"OUI36"，大小写不敏感。
func ParseAssignment(s string) (Assignment, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MA-L", "OUI":
		return MAL, nil
	case "MA-M", "OUI28":
		return MAM, nil
	case "MA-S", "OUI36":
		return MAS, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAssignment, s)
	}
}

// assignmentFor 按前缀位数推断分配类型。
func assignmentFor(prefixLen int) Assignment {
	switch prefixLen {
	case 6:
		return MAL
	case 7:
		return MAM
	case 9:
		return MAS
	default:
		return 0
	}
}

// PostalAddress 是注册表文本格式中的结构化地址。
type PostalAddress struct {
	Street     string `json:"street,omitempty" cbor:"1,keyasint,omitempty"`
	City       string `json:"city,omitempty" cbor:"2,keyasint,omitempty"`
	State      string `json:"state,omitempty" cbor:"3,keyasint,omitempty"`
	PostalCode string `json:"postal_code,omitempty" cbor:"4,keyasint,omitempty"`
	Country    string `json:"country,omitempty" cbor:"5,keyasint,omitempty"`
}

// Record 是一条注册表分配。
type Record struct {
	// Prefix 是大写十六进制前缀，位数与 Assignment 一致。
	Prefix       string     `json:"prefix" cbor:"1,keyasint"`
	Organization string     `json:"organization" cbor:"2,keyasint"`
	Assignment   Assignment `json:"assignment" cbor:"3,keyasint"`
	// RawAddress 是 CSV 中未拆分的地址列。
	RawAddress string `json:"raw_address,omitempty" cbor:"4,keyasint,omitempty"`
	// Address 只在来源为文本格式时存在。
	Address *PostalAddress `json:"address,omitempty" cbor:"5,keyasint,omitempty"`
}

// clone 返回深拷贝，调用方修改返回值不会影响 Store。
func (r Record) clone() Record {
	if r.Address != nil {
		addr := *r.Address
		r.Address = &addr
	}
	return r
}
