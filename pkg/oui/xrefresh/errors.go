package xrefresh

import "errors"

var (
	// ErrInvalidSchedule 表示 cron 表达式无法解析。
	ErrInvalidSchedule = errors.New("xrefresh: invalid schedule")

	// ErrNilTarget 表示没有提供替换目标。
	ErrNilTarget = errors.New("xrefresh: nil target")
)
