package xlog

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// =============================================================================
// 全局 Logger
//
// 只供 CLI 入口等简单场景兜底，库代码通过选项显式注入 Logger。
// =============================================================================

var globalLogger atomic.Pointer[LoggerWithLevel]

// Default 返回全局默认 Logger，未设置时惰性创建（stderr，Info，text）。
func Default() LoggerWithLevel {
	if l := globalLogger.Load(); l != nil {
		return *l
	}
	logger, _, _ := New().Build()
	// 并发首次调用时只保留一个实例
	if globalLogger.CompareAndSwap(nil, &logger) {
		return logger
	}
	return *globalLogger.Load()
}

// SetDefault 替换全局默认 Logger，nil 被忽略。
func SetDefault(l LoggerWithLevel) {
	if l == nil {
		return
	}
	globalLogger.Store(&l)
}

// Discard 返回丢弃所有输出的 Logger，用于测试与未注入 Logger 的组件。
func Discard() LoggerWithLevel {
	return &xlogger{
		handler:  slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}),
		levelVar: new(slog.LevelVar),
	}
}
