package xregistry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// csvColumns 是 IEEE CSV 的列数：Registry, Assignment, Organization Name, Organization Address。
const csvColumns = 4

// ParseCSV 解析 IEEE 注册表 CSV。首行表头被跳过。
//
// 分配类型取自 Registry 列，因此同一个 reader 可以混合三种注册表。
// 行列数不对或 Registry 未知时返回 [ErrMalformed]，错误中带行号。
func ParseCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvColumns
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		a, err := ParseAssignment(row[0])
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		records = append(records, Record{
			Assignment:   a,
			Prefix:       strings.ToUpper(strings.TrimSpace(row[1])),
			Organization: strings.TrimSpace(row[2]),
			RawAddress:   strings.TrimSpace(row[3]),
		})
	}
}
