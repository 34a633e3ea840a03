package xlog

import (
	"log/slog"
	"time"
)

// =============================================================================
// 常用属性 Key 常量
// =============================================================================

const (
	KeyError        = "error"
	KeyDuration     = "duration"
	KeyCount        = "count"
	KeyComponent    = "component"
	KeyInput        = "input"
	KeyPrefix       = "prefix"
	KeyOrganization = "organization"
	KeyAssignment   = "assignment"
	KeyClass        = "class"
	KeySource       = "source"
	KeyPath         = "path"
	KeyURL          = "url"
	KeyBytes        = "bytes"
)

// =============================================================================
// 便捷属性构造函数
// =============================================================================

// Err 创建错误属性。err 为 nil 时返回空属性（会被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Count 创建计数属性
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Input 记录调用方原始输入
func Input(s string) slog.Attr {
	return slog.String(KeyInput, s)
}

// Prefix 记录匹配到的十六进制前缀
func Prefix(p string) slog.Attr {
	return slog.String(KeyPrefix, p)
}

// Organization 记录组织名称
func Organization(name string) slog.Attr {
	return slog.String(KeyOrganization, name)
}

// Assignment 记录 IEEE 分配类型（MA-L/MA-M/MA-S）
func Assignment(a string) slog.Attr {
	return slog.String(KeyAssignment, a)
}

// Class 记录解析分类
func Class(c string) slog.Attr {
	return slog.String(KeyClass, c)
}

// Source 记录结果来源
func Source(s string) slog.Attr {
	return slog.String(KeySource, s)
}

// Path 记录文件路径
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// URL 记录远程地址
func URL(u string) slog.Attr {
	return slog.String(KeyURL, u)
}

// Bytes 记录字节数
func Bytes(n int64) slog.Attr {
	return slog.Int64(KeyBytes, n)
}
