package xresolve

import (
	"fmt"

	"github.com/omeyang/xoui/pkg/oui/xclassify"
	"github.com/omeyang/xoui/pkg/oui/xregistry"
	"github.com/omeyang/xoui/pkg/util/xmac"
)

// Class 是解析结果的分类。
type Class uint8

// 解析分类。
const (
	ClassUnregistered Class = iota
	ClassRegistered
	ClassBroadcast
	ClassProtocolReserved
	ClassProtocolRange
	ClassLocallyAdministered
)

var classNames = [...]string{
	ClassUnregistered:        "unregistered",
	ClassRegistered:          "registered",
	ClassBroadcast:           "broadcast",
	ClassProtocolReserved:    "protocol-reserved",
	ClassProtocolRange:       "protocol-range",
	ClassLocallyAdministered: "locally-administered",
}

// String 返回分类名称。
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// MarshalText 实现 encoding.TextMarshaler。
func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func classOf(c xclassify.Class) Class {
	switch c {
	case xclassify.ClassBroadcast:
		return ClassBroadcast
	case xclassify.ClassProtocolReserved:
		return ClassProtocolReserved
	case xclassify.ClassProtocolRange:
		return ClassProtocolRange
	case xclassify.ClassLocallyAdministered:
		return ClassLocallyAdministered
	default:
		return ClassUnregistered
	}
}

// Source 标识结果来自哪个环节。
type Source uint8

// 结果来源。
const (
	SourceNone Source = iota
	SourceRules
	SourceRegistry
	SourceFallback
)

// String 返回来源名称。
func (s Source) String() string {
	switch s {
	case SourceRules:
		return "rules"
	case SourceRegistry:
		return "registry"
	case SourceFallback:
		return "fallback"
	default:
		return "none"
	}
}

// MarshalText 实现 encoding.TextMarshaler。
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result 是一次成功解析的结果，所有字段都是值拷贝。
type Result struct {
	// Input 是调用方的原始输入。
	Input string `json:"input"`
	// Digits 是规范化后的输入数字串，保留原始位数。
	Digits string `json:"digits"`
	// Prefix 是命中的前缀：注册表为 6/7/9 位，规则为完整输入或 6 位 OUI，
	// 未注册时为输入的 OUI。
	Prefix       string `json:"prefix"`
	Organization string `json:"organization,omitempty"`
	Class        Class  `json:"class"`
	Source       Source `json:"source"`
	// Assignment 只在注册表或外部查询命中时有值。
	Assignment xregistry.Assignment     `json:"assignment,omitempty"`
	RawAddress string                   `json:"raw_address,omitempty"`
	Address    *xregistry.PostalAddress `json:"address,omitempty"`
}

// Found 报告是否得到了组织或分类标签。
func (r Result) Found() bool {
	return r.Class != ClassUnregistered
}

// HyphenPrefix 返回短线分隔的大写前缀，如 "24-6D-5E" 或 "79-B7-4D-A"。
func (r Result) HyphenPrefix() string {
	return xmac.Format(r.Prefix, xmac.NotationHyphen, xmac.Upper)
}

func fromRecord(input, digits string, rec xregistry.Record, src Source) Result {
	res := Result{
		Input:        input,
		Digits:       digits,
		Prefix:       rec.Prefix,
		Organization: rec.Organization,
		Class:        ClassRegistered,
		Source:       src,
		Assignment:   rec.Assignment,
		RawAddress:   rec.RawAddress,
	}
	if rec.Address != nil {
		addr := *rec.Address
		res.Address = &addr
	}
	return res
}

// Outcome 是批量解析中单个输入的结果。
type Outcome struct {
	Result Result
	Err    error
}
