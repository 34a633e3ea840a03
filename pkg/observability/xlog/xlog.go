// Package xlog 提供基于 log/slog 的结构化日志。
//
// 设计理念：
//   - 所有方法第一个参数是 context.Context，便于后续接入追踪字段
//   - 方法签名只接受 slog.Attr，避免隐式 key-value 转换
//   - 动态级别控制，配置热更新时无需重建 Logger
//   - Build() 返回 cleanup 函数，负责关闭轮转文件
//
// 快速示例：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//	logger.Info(ctx, "registry loaded", xlog.Count(35000))
package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带额外属性的派生 Logger，派生 Logger 与父级共享级别。
	With(attrs ...slog.Attr) Logger
}

// Leveler 级别控制接口。
//
// 与 Logger 分离，避免污染核心日志接口。
type Leveler interface {
	SetLevel(level Level)
	GetLevel() Level
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel 组合接口：Logger + Leveler。Build() 返回此接口。
type LoggerWithLevel interface {
	Logger
	Leveler
}
