package xregistry

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	// 70-B3-D5   (hex)		Organization
	hexLine = regexp.MustCompile(`^([0-9A-Fa-f]{2})-([0-9A-Fa-f]{2})-([0-9A-Fa-f]{2})\s+\(hex\)\s*(.*)$`)
	// 002272     (base 16)		Organization
	// D00000-DFFFFF     (base 16)		Organization
	base16Line = regexp.MustCompile(`^([0-9A-Fa-f]{6})(?:-[0-9A-Fa-f]{6})?\s+\(base 16\)\s*(.*)$`)
	// 城市、州、邮编之间以两个以上空白分隔
	fieldSep = regexp.MustCompile(`\s{2,}|\t+`)
)

const maxLineSize = 1 << 20

// ParseText 解析 IEEE 注册表文本格式（oui.txt、mam.txt、oui36.txt）。
//
// 每条记录以 "XX-XX-XX (hex)" 行开始，随后是 "(base 16)" 行和若干地址行，
// 以空行结束。MA-M/MA-S 的 base 16 行给出范围起点，前缀取 OUI 加起点的前几位。
// 地址行的最后一行是国家，倒数第二行是 "城市  州  邮编"，其余为街道。
func ParseText(r io.Reader, a Assignment) ([]Record, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAssignment, uint8(a))
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		records []Record
		cur     *Record
		oui     string
		lines   []string
		lineNo  int
	)
	flush := func() {
		if cur != nil {
			cur.Address = postalAddress(lines)
			records = append(records, *cur)
		}
		cur, oui, lines = nil, "", nil
	}

	for sc.Scan() {
		lineNo++
		raw := strings.TrimRight(sc.Text(), "\r")
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case hexLine.MatchString(line):
			flush()
			m := hexLine.FindStringSubmatch(line)
			oui = strings.ToUpper(m[1] + m[2] + m[3])
		case oui != "" && cur == nil && base16Line.MatchString(line):
			m := base16Line.FindStringSubmatch(line)
			start := strings.ToUpper(m[1])
			prefix := oui
			if a != MAL {
				// MA-M/MA-S 的起点 "D00000" 对应前缀 OUI+"D"
				prefix += start[:a.PrefixLen()-6]
			} else if start != oui {
				return nil, fmt.Errorf("%w: line %d: base 16 %s does not match hex %s", ErrMalformed, lineNo, start, oui)
			}
			cur = &Record{Prefix: prefix, Organization: strings.TrimSpace(m[2]), Assignment: a}
		case cur != nil:
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	flush()
	return records, nil
}

// postalAddress 把地址行拆分为结构化地址，没有地址行时返回 nil。
func postalAddress(lines []string) *PostalAddress {
	if len(lines) == 0 {
		return nil
	}
	addr := &PostalAddress{Country: lines[len(lines)-1]}
	if len(lines) >= 2 {
		parts := fieldSep.Split(lines[len(lines)-2], -1)
		switch len(parts) {
		case 1:
			addr.City = parts[0]
		case 2:
			addr.City, addr.PostalCode = parts[0], parts[1]
		default:
			addr.City, addr.State, addr.PostalCode = parts[0], parts[1], strings.Join(parts[2:], " ")
		}
	}
	if len(lines) >= 3 {
		addr.Street = strings.Join(lines[:len(lines)-2], ", ")
	}
	return addr
}
