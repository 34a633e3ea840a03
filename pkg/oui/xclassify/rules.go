package xclassify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/omeyang/xoui/pkg/util/xmac"
)

// ErrInvalidRule 表示规则定义不合法。
var ErrInvalidRule = errors.New("xclassify: invalid rule")

// Kind 标识规则的匹配方式。
type Kind uint8

// 规则类型，按默认优先级排列。
const (
	KindExactAddress Kind = iota + 1
	KindExactOUI
	KindPattern
	KindLocalBit
)

// String 返回规则类型名称。
func (k Kind) String() string {
	switch k {
	case KindExactAddress:
		return "exact-address"
	case KindExactOUI:
		return "exact-oui"
	case KindPattern:
		return "pattern"
	case KindLocalBit:
		return "local-bit"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Class 是规则命中后的分类标签。
type Class uint8

// 分类标签。
const (
	ClassBroadcast Class = iota + 1
	ClassProtocolReserved
	ClassProtocolRange
	ClassLocallyAdministered
)

// String 返回分类名称。
func (c Class) String() string {
	switch c {
	case ClassBroadcast:
		return "broadcast"
	case ClassProtocolReserved:
		return "protocol-reserved"
	case ClassProtocolRange:
		return "protocol-range"
	case ClassLocallyAdministered:
		return "locally-administered"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// LabelLocallyAdministered 是本地管理位规则的标签。
const LabelLocallyAdministered = "Locally administered"

// Rule 是一条分类规则。只有与 Kind 对应的字段有意义。
type Rule struct {
	Kind Kind
	// Value 是 KindExactAddress 的完整地址或 KindExactOUI 的 6 位 OUI。
	Value   string
	Pattern *regexp.Regexp
	Label   string
	Class   Class
}

// Match 是一次命中的结果。
type Match struct {
	// Prefix 是命中的数字串：精确地址为完整地址，精确 OUI 为 6 位，
	// 正则与本地管理位为输入的全部数字。
	Prefix string
	Label  string
	Class  Class
	Kind   Kind
}

// ExactAddress 创建完整地址精确匹配规则。
func ExactAddress(addr, label string, class Class) (Rule, error) {
	digits, err := xmac.Normalize(addr)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if xmac.Validate(digits) == 0 {
		return Rule{}, fmt.Errorf("%w: %q is not a full address", ErrInvalidRule, addr)
	}
	return Rule{Kind: KindExactAddress, Value: digits, Label: label, Class: class}, nil
}

// ExactOUI 创建 6 位 OUI 精确匹配规则。
func ExactOUI(oui, label string, class Class) (Rule, error) {
	digits, err := xmac.Normalize(oui)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	if len(digits) != 6 {
		return Rule{}, fmt.Errorf("%w: %q is not a 6 digit OUI", ErrInvalidRule, oui)
	}
	return Rule{Kind: KindExactOUI, Value: digits, Label: label, Class: class}, nil
}

// Pattern 创建正则匹配规则。expr 未以 ^ 开头时自动补上。
func Pattern(expr, label string) (Rule, error) {
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return Rule{Kind: KindPattern, Pattern: re, Label: label, Class: ClassProtocolRange}, nil
}

// LocalBit 创建本地管理位规则。
func LocalBit() Rule {
	return Rule{Kind: KindLocalBit, Label: LabelLocallyAdministered, Class: ClassLocallyAdministered}
}

// match 对规范化数字串求值单条规则。
func (r Rule) match(digits string) (Match, bool) {
	hit := Match{Label: r.Label, Class: r.Class, Kind: r.Kind}
	switch r.Kind {
	case KindExactAddress:
		if digits != r.Value {
			return Match{}, false
		}
		hit.Prefix = digits
	case KindExactOUI:
		if len(digits) < 6 || digits[:6] != r.Value {
			return Match{}, false
		}
		hit.Prefix = r.Value
	case KindPattern:
		if r.Pattern == nil || !r.Pattern.MatchString(digits) {
			return Match{}, false
		}
		hit.Prefix = digits
	case KindLocalBit:
		if !xmac.IsLocallyAdministeredDigits(digits) {
			return Match{}, false
		}
		hit.Prefix = digits
	default:
		return Match{}, false
	}
	return hit, true
}

// Rules 是按优先级排列的规则列表。
type Rules []Rule

// Classify 按顺序求值规则，返回第一条命中。digits 必须是规范化后的大写数字串。
func (rs Rules) Classify(digits string) (Match, bool) {
	for _, r := range rs {
		if m, ok := r.match(digits); ok {
			return m, true
		}
	}
	return Match{}, false
}

// ClassifyAddr 对完整地址求值规则。
func (rs Rules) ClassifyAddr(a xmac.Addr) (Match, bool) {
	if !a.IsValid() {
		return Match{}, false
	}
	return rs.Classify(a.Digits())
}
