package xregistry

import "errors"

var (
	// ErrNoData 表示没有得到任何注册表记录。启动时遇到该错误必须上报，
	// 不能在空表上静默运行。
	ErrNoData = errors.New("xregistry: no registry data")

	// ErrMalformed 表示注册表文件内容无法解析。
	ErrMalformed = errors.New("xregistry: malformed registry data")

	// ErrUnknownAssignment 表示未知的分配类型。
	ErrUnknownAssignment = errors.New("xregistry: unknown assignment")
)
