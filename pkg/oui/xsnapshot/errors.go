package xsnapshot

import "errors"

var (
	// ErrVersionMismatch 表示快照由不兼容的格式版本写入。
	ErrVersionMismatch = errors.New("xsnapshot: version mismatch")

	// ErrCorrupt 表示快照损坏：魔数不符、校验失败或无法解码。
	ErrCorrupt = errors.New("xsnapshot: corrupt snapshot")
)
